package provider

import "fmt"

// The prompts demand a single JSON object with a fixed schema so the response
// can be unmarshalled directly. Models still wrap output in markdown fences
// often enough that extractJSON has to tolerate them.

func analyzePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume reviewer and ATS specialist.
Analyze the resume below and return your result as a single JSON object in this exact format:

{
  "score": number (0-100, overall resume quality),
  "strengths": [string],
  "weaknesses": [string],
  "keywords": [string, the most important skill keywords found],
  "ats_compatibility": number (0-100)
}

Base all reasoning only on the provided text. Do not invent experience.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.

Resume:
%s`, resumeText)
}

func enhancePrompt(resumeText, targetRole, targetIndustry string) string {
	return fmt.Sprintf(`You are an expert resume writer.
Rewrite the resume below to be stronger and more impactful for the target role %q in the %q industry.
Keep every fact truthful to the original; improve wording, structure and quantification only.
Return your result as a single JSON object in this exact format:

{
  "enhanced_text": string
}

Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.

Resume:
%s`, targetRole, targetIndustry, resumeText)
}

func matchPrompt(resumeText string, req MatchRequest) string {
	company := req.CompanyName
	if company == "" {
		company = "the hiring company"
	}
	return fmt.Sprintf(`You are an expert AI career assistant that evaluates how well a candidate's resume matches a job description.
Compare the resume with the job posting for %q at %s and return your result as a single JSON object in this exact format:

{
  "match_score": number (0-100),
  "matched_keywords": [string],
  "missing_keywords": [string],
  "suggestions": [string],
  "strength_areas": [string],
  "improvement_areas": [string],
  "salary_negotiation_points": [string]
}

Be concise and professional. Base all reasoning only on the provided text.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.

Job description:
%s

Resume:
%s`, req.JobTitle, company, req.JobDescription, resumeText)
}
