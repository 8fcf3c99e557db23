package studio

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// ASMRCharacter は演者(ASMRtist)です。省略可能です。
type ASMRCharacter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ASMRConcept はASMRスタジオのコンセプトです。
type ASMRConcept struct {
	Concept    string          `json:"concept"`
	Triggers   []string        `json:"triggers"`
	Setting    string          `json:"setting"`
	Characters []ASMRCharacter `json:"characters"`
}

// ASMRScene は動画の1セグメントの内容です。
type ASMRScene struct {
	SceneNumber       int      `json:"scene_number"`
	Timestamp         string   `json:"timestamp"`
	ActionDescription string   `json:"action_description"`
	SoundDescription  string   `json:"sound_description"`
	VisualDescription string   `json:"visual_description"`
	TriggersPresent   []string `json:"triggers_present"`
}

func (s ASMRScene) Num() int { return s.SceneNumber }

// ASMRSource はASMRスタジオ固有のプロンプトとスキーマを実装します。
type ASMRSource struct {
	gw gateway.Gateway
}

func NewASMRSource(gw gateway.Gateway) *ASMRSource {
	return &ASMRSource{gw: gw}
}

// NewASMREngine はASMRスタジオのエンジンを生成します。
func NewASMREngine(gw gateway.Gateway) *Engine[ASMRConcept, ASMRScene] {
	return NewEngine[ASMRConcept, ASMRScene](NewASMRSource(gw))
}

var asmrSceneSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scene_number":       {Type: genai.TypeInteger},
		"timestamp":          {Type: genai.TypeString, Description: "The time range for this scene, e.g., '0:30 - 1:00'."},
		"action_description": {Type: genai.TypeString, Description: "A detailed description of the ASMRtist's actions."},
		"sound_description":  {Type: genai.TypeString, Description: "A very specific description of the sounds being produced, focusing on trigger words."},
		"visual_description": {Type: genai.TypeString, Description: "Detailed cinematography notes (e.g., 'Macro shot of fingertips tapping on glass')."},
		"triggers_present": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of the primary ASMR triggers featured in this scene.",
		},
	},
	Required: []string{"scene_number", "timestamp", "action_description", "sound_description", "visual_description", "triggers_present"},
}

// GenerateScript はコンセプトから3〜5のシーンを持つ台本を生成します。
func (as *ASMRSource) GenerateScript(ctx context.Context, concept ASMRConcept) ([]ASMRScene, error) {
	var characterSection string
	if len(concept.Characters) > 0 {
		lines := make([]string, 0, len(concept.Characters))
		for _, c := range concept.Characters {
			lines = append(lines, fmt.Sprintf("- %s: %s", c.Name, c.Description))
		}
		characterSection = "ASMRtist(s):\n" + strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(`You are a creative director for ASMR videos, specializing in creating scripts for text-to-video models.

Video Concept: %q
Primary ASMR Triggers: %s
Setting: %s
%s

Generate a script with 3-5 distinct scenes for a relaxing ASMR video based on the provided details. Each scene should represent a segment of the video.

**RULES:**
1.  **Focus on Sound:** The 'sound_description' must be extremely detailed, using evocative onomatopoeia and adjectives to describe the ASMR triggers.
2.  **Visuals Support Sound:** The 'visual_description' should complement the sounds (e.g., close-ups on hands, macro shots of textures).
3.  **Logical Flow:** The scenes should progress logically to create a cohesive and relaxing experience.
4.  Provide the output in the specified structured data format.`,
		concept.Concept, strings.Join(concept.Triggers, ", "), concept.Setting, characterSection)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scenes": {
				Type:        genai.TypeArray,
				Description: "An array of 3-5 ASMR scene objects.",
				Items:       asmrSceneSchema,
			},
		},
		Required: []string{"scenes"},
	}

	var out struct {
		Scenes []ASMRScene `json:"scenes"`
	}
	if err := as.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}
	for i := range out.Scenes {
		normalizeASMRScene(&out.Scenes[i])
	}
	return out.Scenes, nil
}

// ExtendScene は対象シーンだけを詳細に書き直します。タイムスタンプは
// モデルに維持を指示しつつ、返却値をそのまま採用します。
func (as *ASMRSource) ExtendScene(ctx context.Context, concept ASMRConcept, _ []Scene[ASMRScene], target Scene[ASMRScene]) (ASMRScene, error) {
	cur := target.Payload
	prompt := fmt.Sprintf(`You are an ASMR scriptwriter, extending a scene to be more detailed and immersive.

Video Concept: %q
Original Scene (Scene %d):
- Timestamp: %s
- Action: %s
- Sound: %s
- Visual: %s

Now, rewrite ONLY this scene to be more detailed.
- Expand the **action_description** with more nuanced movements.
- Enhance the **sound_description** with more vivid onomatopoeia and descriptive adjectives.
- Make the **visual_description** more specific and cinematic.
- Keep the **timestamp** the same.`,
		concept.Concept, target.Number,
		cur.Timestamp, cur.ActionDescription, cur.SoundDescription, cur.VisualDescription)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"timestamp":          {Type: genai.TypeString},
			"action_description": {Type: genai.TypeString},
			"sound_description":  {Type: genai.TypeString},
			"visual_description": {Type: genai.TypeString},
		},
		Required: []string{"timestamp", "action_description", "sound_description", "visual_description"},
	}

	var out struct {
		Timestamp         string `json:"timestamp"`
		ActionDescription string `json:"action_description"`
		SoundDescription  string `json:"sound_description"`
		VisualDescription string `json:"visual_description"`
	}
	if err := as.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return ASMRScene{}, err
	}

	updated := cur
	updated.Timestamp = out.Timestamp
	updated.ActionDescription = out.ActionDescription
	updated.SoundDescription = out.SoundDescription
	updated.VisualDescription = out.VisualDescription
	return updated, nil
}

// NextScene は続きの1シーンを生成します。
func (as *ASMRSource) NextScene(ctx context.Context, concept ASMRConcept, scenes []Scene[ASMRScene], nextNumber int, _ string) (ASMRScene, error) {
	previous := make([]string, 0, len(scenes))
	for _, s := range scenes {
		previous = append(previous, fmt.Sprintf("Scene %d (%s): [Sound: %s] [Action: %s]", s.Number, s.Payload.Timestamp, s.Payload.SoundDescription, s.Payload.ActionDescription))
	}

	prompt := fmt.Sprintf(`You are an ASMR scriptwriter, creating the next scene in a sequence.

Video Concept: %q
Scenes so far:
%s

Based on the above, create the next logical scene in the ASMR video. It should be scene number %d.

Provide the following structured data for the new scene:
1.  **timestamp**: A logical next time range.
2.  **action_description**: The actions performed by the ASMRtist.
3.  **sound_description**: Detailed description of the trigger sounds.
4.  **visual_description**: Cinematic and visual details.
5.  **triggers_present**: List of primary triggers in this new scene.`,
		concept.Concept, strings.Join(previous, "\n"), nextNumber)

	var out ASMRScene
	if err := as.gw.GenerateStructured(ctx, prompt, asmrSceneSchema, &out); err != nil {
		return ASMRScene{}, err
	}
	out.SceneNumber = nextNumber
	normalizeASMRScene(&out)
	return out, nil
}

func normalizeASMRScene(s *ASMRScene) {
	if s.TriggersPresent == nil {
		s.TriggersPresent = []string{}
	}
}
