package studio

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sela-zcodex/ai-creative-tools/pkg/gateway"
)

// RCCrawler は車両定義です。全シーンを通じて不変でなければなりません。
type RCCrawler struct {
	Name          string `json:"name"`
	Model         string `json:"model"`
	Color         string `json:"color"`
	Modifications string `json:"modifications"`
}

// RCCrawlerConcept はRCクローラースタジオのコンセプトです。
type RCCrawlerConcept struct {
	Concept  string      `json:"concept"`
	Crawlers []RCCrawler `json:"crawlers"`
}

// RCCrawlerScene は8秒のショット1本分の内容です。
type RCCrawlerScene struct {
	SceneNumber        int      `json:"scene_number"`
	CrawlerDescription string   `json:"crawler_description"`
	SceneAction        string   `json:"scene_action"`
	Environment        string   `json:"environment"`
	Cinematography     string   `json:"cinematography"`
	CrawlersPresent    []string `json:"crawlers_present"`
}

func (s RCCrawlerScene) Num() int { return s.SceneNumber }

// ShotType は追加ショットの種類の指定です。
type ShotType string

const (
	ShotAny          ShotType = "Any"
	ShotEstablishing ShotType = "Establishing Shot"
	ShotAction       ShotType = "Action Shot"
	ShotDetail       ShotType = "Detail Shot"
	ShotHero         ShotType = "Hero Shot"
)

// shotDefinition はショット種類ごとのプロンプト定義です。
func shotDefinition(t ShotType) string {
	switch t {
	case ShotEstablishing:
		return "A wide, scenic shot to show the overall location."
	case ShotAction:
		return "A dynamic shot focusing on the crawler's movement."
	case ShotDetail:
		return "An extreme close-up on a specific part like suspension, wheels, or mud."
	default:
		return "A dramatic, epic, slow-motion shot of the crawler."
	}
}

// RCCrawlerSource はRCクローラースタジオ固有のプロンプトとスキーマを実装します。
type RCCrawlerSource struct {
	gw gateway.Gateway
}

func NewRCCrawlerSource(gw gateway.Gateway) *RCCrawlerSource {
	return &RCCrawlerSource{gw: gw}
}

// NewRCCrawlerEngine はRCクローラースタジオのエンジンを生成します。
func NewRCCrawlerEngine(gw gateway.Gateway) *Engine[RCCrawlerConcept, RCCrawlerScene] {
	return NewEngine[RCCrawlerConcept, RCCrawlerScene](NewRCCrawlerSource(gw))
}

var rcCrawlerSceneSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scene_number":        {Type: genai.TypeInteger},
		"crawler_description": {Type: genai.TypeString, Description: "An ultra-realistic, scene-specific cinematic description of the main RC crawler."},
		"scene_action":        {Type: genai.TypeString, Description: "A concise description of the crawler's actions, suitable for an 8-second clip."},
		"environment":         {Type: genai.TypeString, Description: "A detailed description of the scene's environment and terrain."},
		"cinematography":      {Type: genai.TypeString, Description: "Detailed cinematography notes for a VEO model (e.g., slow-motion, FPV drone)."},
		"crawlers_present": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of all crawler names in the scene.",
		},
	},
	Required: []string{"scene_number", "crawler_description", "scene_action", "environment", "cinematography", "crawlers_present"},
}

// EnhanceConcept は簡素なコンセプトを映画的な表現へ書き直します。
func (rs *RCCrawlerSource) EnhanceConcept(ctx context.Context, concept string) (string, error) {
	prompt := fmt.Sprintf(`Enhance this simple RC crawler video concept into a vivid, detailed, and cinematic one. Make it more descriptive and exciting. User concept: %q`, concept)
	system := "You are a creative director for RC crawler videos. Rewrite the user's concept into a more engaging one. Output only the enhanced concept, with no preamble."
	text, err := rs.gw.GenerateText(ctx, prompt, system)
	if err != nil {
		return "", fmt.Errorf("コンセプトの強化に失敗しました: %w", err)
	}
	return text, nil
}

// GenerateScript はコンセプトから3〜5の独立したショットを生成します。
func (rs *RCCrawlerSource) GenerateScript(ctx context.Context, concept RCCrawlerConcept) ([]RCCrawlerScene, error) {
	prompt := fmt.Sprintf(`You are a creative director for RC crawler videos, specializing in prompts for advanced text-to-video models like VEO, which generates short, 8-second clips per prompt.

Video Concept: %q
RC Crawlers:
%s

Generate a collection of 3-5 distinct, self-contained cinematic SHOTS based on this concept that form a cohesive journey.

**ULTRA-IMPORTANT: VEHICLE CONSISTENCY IS NON-NEGOTIABLE.**
The model, color, and modifications of each RC crawler listed above are **FIXED**. They **MUST NOT** change, be altered, or be replaced in any way across any of the scenes you generate. The user is creating a continuous video and any change to the vehicle will ruin the entire sequence. The only major element that should change is the immediate environment to show a journey.

**ADDITIONAL RULES:**
1.  The **'crawler_description'** for each scene should describe the vehicle's appearance *in that specific moment* (e.g., "The Bronco, now splattered with mud..."), but the underlying vehicle MUST be consistent with its initial description.
2.  **VARY THE ENVIRONMENT.** Each scene must take place in a slightly different but logically connected environment, showing the crawler progressing. The 'environment' field for each scene must be unique and detailed.
3.  Each 'scene_action' must describe a brief, specific action suitable for an 8-second clip.
4.  'cinematography' notes must be highly dynamic and specific for a VEO model (e.g., "Extreme slow-motion, 240fps, macro lens on tire tread gripping wet rock").

Provide the structured data for the shots.`,
		concept.Concept, crawlerList(concept.Crawlers, "Modifications"))

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scenes": {
				Type:        genai.TypeArray,
				Description: "An array of 3-5 scene objects, each representing an 8-second shot.",
				Items:       rcCrawlerSceneSchema,
			},
		},
		Required: []string{"scenes"},
	}

	var out struct {
		Scenes []RCCrawlerScene `json:"scenes"`
	}
	if err := rs.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}
	for i := range out.Scenes {
		normalizeRCCrawlerScene(&out.Scenes[i])
	}
	return out.Scenes, nil
}

// ExtendScene は対象ショットだけを詳細に書き直します。車両の同一性と
// シーン番号は維持されます。
func (rs *RCCrawlerSource) ExtendScene(ctx context.Context, concept RCCrawlerConcept, _ []Scene[RCCrawlerScene], target Scene[RCCrawlerScene]) (RCCrawlerScene, error) {
	cur := target.Payload
	prompt := fmt.Sprintf(`You are a creative director extending an RC crawler video shot for a VEO-style model (8-second clips).
Video Concept: %q
RC Crawlers:
%s

Here is the 8-second shot to extend (Scene %d):
- Environment: %q
- Crawler Description: %q
- Scene Action: %q
- Cinematography: %q

Now, rewrite ONLY this shot to be more detailed and vivid, keeping the action suitable for 8 seconds.
- For **crawler_description**, significantly elaborate on the vehicle's appearance *in this specific moment*.
- Expand the **scene_action** with more specific movements without making it too long for an 8-second clip.
- Enhance the **environment** description with more sensory details.
- Add more dynamic and specific **cinematography** notes.
- **IMPORTANT**: You must maintain consistency with the crawler's base model and the established environment.`,
		concept.Concept, crawlerList(concept.Crawlers, "Modifications"), target.Number,
		cur.Environment, cur.CrawlerDescription, cur.SceneAction, cur.Cinematography)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"crawler_description": {Type: genai.TypeString},
			"scene_action":        {Type: genai.TypeString},
			"environment":         {Type: genai.TypeString},
			"cinematography":      {Type: genai.TypeString},
		},
		Required: []string{"crawler_description", "scene_action", "environment", "cinematography"},
	}

	var out struct {
		CrawlerDescription string `json:"crawler_description"`
		SceneAction        string `json:"scene_action"`
		Environment        string `json:"environment"`
		Cinematography     string `json:"cinematography"`
	}
	if err := rs.gw.GenerateStructured(ctx, prompt, schema, &out); err != nil {
		return RCCrawlerScene{}, err
	}

	updated := cur
	updated.CrawlerDescription = out.CrawlerDescription
	updated.SceneAction = out.SceneAction
	updated.Environment = out.Environment
	updated.Cinematography = out.Cinematography
	return updated, nil
}

// NextScene は旅の続きとなる新しいショットを1本生成します。hint には
// ShotType の文字列を渡せます。空文字は Any と同じ扱いです。
func (rs *RCCrawlerSource) NextScene(ctx context.Context, concept RCCrawlerConcept, scenes []Scene[RCCrawlerScene], nextNumber int, hint string) (RCCrawlerScene, error) {
	previous := make([]string, 0, len(scenes))
	for _, s := range scenes {
		previous = append(previous, fmt.Sprintf("Scene %d: [Environment: %s] [Action: %s]", s.Number, s.Payload.Environment, s.Payload.SceneAction))
	}

	shotType := ShotType(hint)
	var shotInstruction string
	if shotType != "" && shotType != ShotAny {
		shotInstruction = fmt.Sprintf("The next shot MUST be a %q. A %q is defined as: %s", shotType, shotType, shotDefinition(shotType))
	} else {
		shotInstruction = "Decide on the best type of shot to follow the previous scenes."
	}

	prompt := fmt.Sprintf(`You are a creative director for an RC crawler video, generating a new shot for a VEO-style model (8-second clips).

Video Concept: %q
RC Crawlers:
%s

Here are the shots generated so far:
%s

Based on the above, create the next single, distinct 8-second cinematic shot in the journey. It should be scene number %d.
%s

**ULTRA-IMPORTANT: VEHICLE CONSISTENCY IS NON-NEGOTIABLE.**
The RC crawlers defined MUST maintain their exact appearance (model, color, modifications) from the previous scenes. **DO NOT CHANGE THE VEHICLE.** The goal is to create the *next logical step* in a continuous journey. Only the immediate environment and the crawler's interaction with it (e.g., getting muddy) should change. The core vehicle is immutable.

**ADDITIONAL RULES:**
1.  **CREATE A NEW ENVIRONMENT.** The environment for this new scene must be different from the previous scenes, showing a progression in the crawler's journey.
2.  The **'crawler_description'** should describe the vehicle's appearance *in this new moment*, reflecting the new environment, but the underlying vehicle MUST remain consistent.
3.  The **'scene_action'** must be a brief, specific action suitable for an 8-second clip that fits the requested shot type.
4.  The **'cinematography'** must be dynamic and specific for a VEO model.`,
		concept.Concept, crawlerList(concept.Crawlers, "Mods"),
		strings.Join(previous, "\n"), nextNumber, shotInstruction)

	var out RCCrawlerScene
	if err := rs.gw.GenerateStructured(ctx, prompt, rcCrawlerSceneSchema, &out); err != nil {
		return RCCrawlerScene{}, err
	}
	out.SceneNumber = nextNumber
	normalizeRCCrawlerScene(&out)
	return out, nil
}

func crawlerList(crawlers []RCCrawler, modsLabel string) string {
	lines := make([]string, 0, len(crawlers))
	for _, c := range crawlers {
		lines = append(lines, fmt.Sprintf("- %s: A %s %s. %s: %s.", c.Name, c.Color, c.Model, modsLabel, c.Modifications))
	}
	return strings.Join(lines, "\n")
}

func normalizeRCCrawlerScene(s *RCCrawlerScene) {
	if s.CrawlersPresent == nil {
		s.CrawlersPresent = []string{}
	}
}
