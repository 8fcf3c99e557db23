package studio

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// MovieCharacter は映画の登場人物です。
type MovieCharacter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DialogueLine はシーン内の1つのセリフです。
type DialogueLine struct {
	Character        string `json:"character"`
	VoiceDescription string `json:"voice_description"`
	Line             string `json:"line"`
}

// MovieConcept は映画スタジオのコンセプトペイロードです。
// Synopsis 以下は BuildMovieConcept で生成されます。
type MovieConcept struct {
	Title      string           `json:"title"`
	Genre      string           `json:"genre"`
	Synopsis   string           `json:"synopsis"`
	FullStory  string           `json:"full_story"`
	Characters []MovieCharacter `json:"characters"`
}

// MovieScene は映画の1シーンの内容フィールドです。
type MovieScene struct {
	SceneNumber                   int            `json:"scene_number"`
	PrincipalCharacterDescription string         `json:"principal_character_description"`
	SceneAction                   string         `json:"scene_action"`
	Cinematography                string         `json:"cinematography"`
	Dialogue                      []DialogueLine `json:"dialogue"`
	CharactersPresent             []string       `json:"characters_present"`
}

// Num は Numbered 制約の実装です。
func (s MovieScene) Num() int { return s.SceneNumber }

// MovieSource は映画スタジオ固有のプロンプトとスキーマを実装します。
type MovieSource struct {
	gw gateway.Gateway
}

// NewMovieSource は MovieSource を生成します。
func NewMovieSource(gw gateway.Gateway) *MovieSource {
	return &MovieSource{gw: gw}
}

// NewMovieEngine は映画スタジオのエンジンを生成します。
func NewMovieEngine(gw gateway.Gateway) *Engine[MovieConcept, MovieScene] {
	return NewEngine[MovieConcept, MovieScene](NewMovieSource(gw))
}

var dialogueSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"character":         {Type: genai.TypeString},
			"voice_description": {Type: genai.TypeString},
			"line":              {Type: genai.TypeString},
		},
		Required: []string{"character", "voice_description", "line"},
	},
}

var movieSceneSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scene_number":                    {Type: genai.TypeInteger},
		"principal_character_description": {Type: genai.TypeString, Description: "An ultra-realistic cinematic description of the main character."},
		"scene_action":                    {Type: genai.TypeString, Description: "A concise description of the character's actions."},
		"cinematography":                  {Type: genai.TypeString, Description: "Detailed cinematography notes."},
		"characters_present":              {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"dialogue":                        dialogueSchema,
	},
	Required: []string{"scene_number", "principal_character_description", "scene_action", "cinematography", "characters_present", "dialogue"},
}

// BuildConcept はタイトルとジャンルからあらすじ・登場人物・本編の
// 物語を生成し、台本生成の入力となるコンセプトを組み立てます。
func (ms *MovieSource) BuildConcept(ctx context.Context, title, genre string) (MovieConcept, error) {
	prompt := fmt.Sprintf(`Based on the movie title %q and the genre %q, generate a compelling synopsis, a list of 2-3 main characters with detailed descriptions, and a full story narrative.`, title, genre)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"synopsis": {Type: genai.TypeString, Description: "A short, compelling synopsis for the movie (2-3 sentences)."},
			"characters": {
				Type:        genai.TypeArray,
				Description: "An array of 2-3 main characters, each with a name and a detailed description.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"name", "description"},
				},
			},
			"fullStory": {Type: genai.TypeString, Description: "A cohesive story narrative (3-4 paragraphs) that follows the synopsis and characters."},
		},
		Required: []string{"synopsis", "characters", "fullStory"},
	}

	var out struct {
		Synopsis   string           `json:"synopsis"`
		Characters []MovieCharacter `json:"characters"`
		FullStory  string           `json:"fullStory"`
	}
	if err := ms.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return MovieConcept{}, fmt.Errorf("あらすじと登場人物の生成に失敗しました: %w", err)
	}

	return MovieConcept{
		Title:      title,
		Genre:      genre,
		Synopsis:   out.Synopsis,
		FullStory:  out.FullStory,
		Characters: out.Characters,
	}, nil
}

// GenerateScript は物語を5〜7の主要シーンへ分解します。
func (ms *MovieSource) GenerateScript(ctx context.Context, concept MovieConcept) ([]MovieScene, error) {
	prompt := fmt.Sprintf(`Based on this full story:
%s

And these characters:
%s

Break the story down into 5-7 key scenes. For each scene, provide the following structured data:
1.  **principal_character_description**: A highly detailed, ultra-realistic cinematic description of the main character *as they appear in this specific scene*. **Do not just repeat their general description.** Instead, describe their current physical state, expression, clothing/fur/skin details reacting to the environment (e.g., dirt, rain, light), and emotional state. This description must be unique and context-aware for each scene while maintaining core character consistency.
2.  **scene_action**: A concise description of the character's actions in the scene.
3.  **cinematography**: Detailed cinematography notes (lens, resolution, focus, lighting, effects), suitable for a text-to-video model like VEO.
4.  **dialogue**: Any dialogue spoken. For each line, provide the character's name, their voice description, and the line itself. If no dialogue, provide an empty array.
5.  **characters_present**: A list of all character names in the scene.`,
		concept.FullStory, movieCharacterList(concept.Characters))

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scenes": {
				Type:        genai.TypeArray,
				Description: "An array of 5-7 scene objects.",
				Items:       movieSceneSchema,
			},
		},
		Required: []string{"scenes"},
	}

	var out struct {
		Scenes []MovieScene `json:"scenes"`
	}
	if err := ms.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}

	for i := range out.Scenes {
		normalizeMovieScene(&out.Scenes[i])
	}
	return out.Scenes, nil
}

// ExtendScene は対象シーンだけを詳細に書き直します。シーン番号と
// 登場人物リストは元のまま維持されます。
func (ms *MovieSource) ExtendScene(ctx context.Context, concept MovieConcept, _ []Scene[MovieScene], target Scene[MovieScene]) (MovieScene, error) {
	cur := target.Payload
	dialogueSoFar := make([]string, 0, len(cur.Dialogue))
	for _, d := range cur.Dialogue {
		dialogueSoFar = append(dialogueSoFar, fmt.Sprintf("%s: %q", d.Character, d.Line))
	}

	prompt := fmt.Sprintf(`You are a screenwriter extending a scene. Here is the full story context:

Full Story: %s

Characters: %s

Here is the scene to extend (Scene %d):
- Principal Character Description: %q
- Scene Action: %q
- Cinematography: %q
- Dialogue so far: %s

Now, rewrite ONLY this scene to be more detailed.
- For **principal_character_description**, significantly elaborate on the character's appearance *in this moment*. Describe their expression, posture, and how the environment affects their look (e.g., sweat beading, clothes torn, glowing eyes). Make it vivid and unique to this extended moment. Do not simply copy the old description.
- Expand the **scene_action** with more specific actions and movements.
- Enhance the **cinematography** notes to be more dynamic and suitable for a VEO model.
- Add or expand **dialogue** snippets (including voice descriptions).
Ensure overall story consistency.`,
		concept.FullStory, movieCharacterList(concept.Characters), target.Number,
		cur.PrincipalCharacterDescription, cur.SceneAction, cur.Cinematography,
		strings.Join(dialogueSoFar, ", "))

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"principal_character_description": {Type: genai.TypeString},
			"scene_action":                    {Type: genai.TypeString},
			"cinematography":                  {Type: genai.TypeString},
			"dialogue":                        dialogueSchema,
		},
		Required: []string{"principal_character_description", "scene_action", "cinematography", "dialogue"},
	}

	var out struct {
		PrincipalCharacterDescription string         `json:"principal_character_description"`
		SceneAction                   string         `json:"scene_action"`
		Cinematography                string         `json:"cinematography"`
		Dialogue                      []DialogueLine `json:"dialogue"`
	}
	if err := ms.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return MovieScene{}, err
	}

	updated := cur
	updated.PrincipalCharacterDescription = out.PrincipalCharacterDescription
	updated.SceneAction = out.SceneAction
	updated.Cinematography = out.Cinematography
	updated.Dialogue = out.Dialogue
	normalizeMovieScene(&updated)
	return updated, nil
}

// NextScene は物語の続きとなる新しい1シーンを生成します。
func (ms *MovieSource) NextScene(ctx context.Context, concept MovieConcept, scenes []Scene[MovieScene], nextNumber int, _ string) (MovieScene, error) {
	previous := make([]string, 0, len(scenes))
	for _, s := range scenes {
		previous = append(previous, fmt.Sprintf("Scene %d: %s", s.Number, s.Payload.SceneAction))
	}

	prompt := fmt.Sprintf(`You are a screenwriter continuing a story.
Here is the full story context:
Full Story: %s
Characters: %s

Here are the scenes so far:
%s

Based on all of the above, write the next single scene in the story. It should be scene number %d.
For the new scene, provide the following structured data:
1.  **principal_character_description**: A highly detailed, ultra-realistic cinematic description of the main character *as they appear in this new scene*. **Do not just repeat their general description from the profile.** Describe their current physical state, expression, and reaction to the environment, making it unique and context-aware while maintaining core consistency.
2.  **scene_action**: A concise description of the character's actions.
3.  **cinematography**: Detailed cinematography notes for a text-to-video model like VEO.
4.  **dialogue**: Any dialogue spoken, with character name, voice description, and line.
5.  **characters_present**: A list of character names in the scene.`,
		concept.FullStory, movieCharacterList(concept.Characters),
		strings.Join(previous, "\n\n"), nextNumber)

	var out MovieScene
	if err := ms.gw.GenerateStructured(ctx, prompt, movieSceneSchema, &out); err != nil {
		return MovieScene{}, err
	}
	out.SceneNumber = nextNumber
	normalizeMovieScene(&out)
	return out, nil
}

func movieCharacterList(chars []MovieCharacter) string {
	lines := make([]string, 0, len(chars))
	for _, c := range chars {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, c.Description))
	}
	return strings.Join(lines, "\n")
}

// normalizeMovieScene は、AIが省略しがちな配列フィールドを空配列に整えます。
func normalizeMovieScene(s *MovieScene) {
	if s.Dialogue == nil {
		s.Dialogue = []DialogueLine{}
	}
	if s.CharactersPresent == nil {
		s.CharactersPresent = []string{}
	}
}
