package engine

// LLM prompt templates — data only, no logic.

// recommendSystemPrompt pins the model to the provided catalog.
const recommendSystemPrompt = `You are an expert assessment consultant. You help hiring teams pick the most relevant assessments from a fixed catalog. You respond with valid JSON only and never mention assessments that are not in the provided candidate list.`

// recommendPrompt asks for a ranked selection from the numbered candidate list.
// Args: k, query text, constraints section (may be empty), candidates block.
const recommendPrompt = `Select the %d most relevant assessments for the hiring need below.

Respond with valid JSON only (no markdown, no ` + "```" + `json` + "```" + ` block):
{
  "recommendations": [
    {"position": 3, "name": "assessment name", "url": "assessment url", "reason": "one sentence: why this assessment fits the need"}
  ],
  "reasoning": "2-3 sentences explaining the overall selection"
}

Rules:
- position is the 1-based number of the assessment in the candidate list below
- Use ONLY assessments from the candidate list. Do NOT invent names or URLs
- Order recommendations from most to least relevant
- Each reason must name the specific skill or trait the assessment measures
- When several candidates cover the same skill, prefer the shorter one

Hiring need:
%s

%sCandidates:
%s`
