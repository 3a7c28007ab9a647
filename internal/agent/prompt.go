package agent

import (
	"fmt"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

// Mode selects optional additions to the system prompt. The zero value is
// the standard single-shot ad.
type Mode struct {
	VoiceOver bool
	Presenter bool
	MultiShot bool
}

// ParseMode reads a comma separated list such as "voiceover,multishot".
// "standard" and the empty string select the zero Mode.
func ParseMode(raw string) (Mode, error) {
	var m Mode
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "", "standard":
		case "voiceover", "voice-over", "voice_over":
			m.VoiceOver = true
		case "presenter":
			m.Presenter = true
		case "multishot", "multi-shot", "multi_shot":
			m.MultiShot = true
		default:
			return Mode{}, fmt.Errorf("agent: unknown video mode %q", part)
		}
	}
	return m, nil
}

func (m Mode) String() string {
	var parts []string
	if m.VoiceOver {
		parts = append(parts, "voiceover")
	}
	if m.Presenter {
		parts = append(parts, "presenter")
	}
	if m.MultiShot {
		parts = append(parts, "multishot")
	}
	if len(parts) == 0 {
		return "standard"
	}
	return strings.Join(parts, ",")
}

const basePrompt = `You are an expert advertising copywriter and video director who makes short-form video ads for e-commerce products.

Your job is to:
1. Analyze the product information and find its key selling points
2. Write a persuasive ad concept for viewers with short attention spans
3. Turn that concept into a video generation prompt that captures the ad
4. Keep the video free of nudity, violence and explicit content. If the setting is a shower or bath, frame the shot so nothing explicit is visible.

Guidelines for the video prompt:
- The whole ad runs under 8 seconds
- Open with a hook that grabs attention in the first 2 seconds
- Show the product's main benefit or unique value
- Close with a clear call to action
- Use vivid, cinematic language
- Describe camera movement, lighting and mood
- Place the product in an aspirational setting
- Keep the prompt under 500 characters`

const voiceOverAddition = `

VOICE-OVER MODE:
The video carries professional voice-over narration. In the prompt:
- Include the narration script in quotes, e.g. "Introducing the kettle that..."
- Keep the voice confident and engaging, matching the brand's tone
- Time lines to key visual moments and leave natural pauses
- Let the narration support the visuals rather than compete with them`

const presenterAddition = `

PRESENTER MODE:
The video features an on-camera presenter speaking to the viewer. In the prompt:
- Describe the presenter's look, setting and body language
- Include the exact spoken script in quotes
- Have the presenter demonstrate the product naturally with real enthusiasm
- Pick a setting that suits the product, such as a studio or a lifestyle scene`

const multiShotAddition = `

MULTI-SHOT MODE:
The ad is a sequence of distinct shots with transitions. Structure the prompt like this:
"[Shot 1: Wide establishing shot of an elegant setting, soft light]
[Shot 2: Close-up of product details, slow pan]
[Shot 3: Medium shot of the product in use]
[Shot 4: Hero shot of the product, dramatic light, brand moment]"

- Use the [Shot N: description] format for every scene
- Use 3 to 5 shots for a 10 to 15 second video
- Give each shot its own angle, framing and camera movement
- Name the transitions (cut, dissolve, pan)
- Build an arc from hook to showcase to benefit to call to action
- Keep lighting and color palette consistent across shots
- Call generate_video with shot_type "multi"`

const shotTypeGuidance = `

SHOT TYPE:
generate_video accepts an optional shot_type:
- "single" for a 5 to 8 second ad or one continuous flowing shot
- "multi" for a 10 to 15 second ad with several scenes; write the prompt as [Shot N: description] blocks`

const workflowSection = `

You MUST call generate_video with your finished prompt. Video generation runs automatically once you call it.

Tools:
1. get_product_metadata fetches product information from a URL
2. generate_video renders the ad from your prompt%s

Workflow:
1. Call get_product_metadata with the product URL
2. Analyze what comes back%s
3. Write the video prompt and show it in your reply
4. Call generate_video with that prompt

Always use the tools and finish every step.`

// BuildSystemPrompt assembles the system prompt for mode. withResearch adds
// the research_product tool to the workflow.
func BuildSystemPrompt(mode Mode, withResearch bool) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	if mode.VoiceOver {
		sb.WriteString(voiceOverAddition)
	}
	if mode.Presenter {
		sb.WriteString(presenterAddition)
	}
	if mode.MultiShot {
		sb.WriteString(multiShotAddition)
	} else {
		sb.WriteString(shotTypeGuidance)
	}
	researchTool, researchStep := "", ""
	if withResearch {
		researchTool = "\n3. research_product runs a structured query for features, benefits and target audience"
		researchStep = "; call research_product if the metadata is thin"
	}
	fmt.Fprintf(&sb, workflowSection, researchTool, researchStep)
	return sb.String()
}

// BuildUserPrompt is the opening user message for one product.
func BuildUserPrompt(productURL string) string {
	return fmt.Sprintf(`Create a short video advertisement for the product at this URL: %s

Steps:
1. Call get_product_metadata to learn about the product
2. Write a compelling video prompt based on what you find
3. Call generate_video with that prompt`, productURL)
}

// BuildAdPrompt writes a video prompt from metadata without a model. It
// follows the same rules as the system prompt and stays under 500 characters.
func BuildAdPrompt(meta domain.ProductMetadata, mode Mode) string {
	name := strings.TrimSpace(meta.Title)
	if name == "" {
		name = "the product"
	}
	if brand := strings.TrimSpace(meta.Brand); brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		name = brand + " " + name
	}
	benefit := "its standout design"
	if len(meta.Features) > 0 && strings.TrimSpace(meta.Features[0]) != "" {
		benefit = strings.TrimSpace(meta.Features[0])
	}

	var prompt string
	if mode.MultiShot {
		prompt = fmt.Sprintf("[Shot 1: Fast push-in on %s in a bright aspirational setting, warm light] "+
			"[Shot 2: Close-up detail pan highlighting %s] "+
			"[Shot 3: Medium shot of the product in everyday use, natural movement] "+
			"[Shot 4: Hero shot, dramatic rim light, on-screen text \"Shop now\"]", name, benefit)
	} else {
		prompt = fmt.Sprintf("Cinematic product ad. Hook: a fast dolly-in reveals %s in a bright aspirational setting. "+
			"Slow orbit with soft golden lighting highlights %s. Upbeat, premium mood. "+
			"Ends on a hero shot with on-screen text \"Shop now\".", name, benefit)
	}
	switch {
	case mode.Presenter:
		prompt += fmt.Sprintf(" A friendly presenter holds it up and says \"You need to try %s.\"", name)
	case mode.VoiceOver:
		prompt += fmt.Sprintf(" Voice-over: \"Meet %s. Get yours today.\"", name)
	}
	return truncateRunes(prompt, maxPromptChars)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
