// Package gemini grades free-form answers with Google's Gemini API.
//
// Judge implements grading.SemanticGrader. Each call renders an embedded
// prompt template with the question, the expected answer and the learner's
// answer, asks the model for a structured JSON verdict of the form
//
//	{"score": 0-3, "explanation": "..."}
//
// and clamps the score into the grading range. Rate limiting, server errors
// and transport failures are retried with exponential backoff and jitter; the
// context bounds the whole exchange. Safety blocks and malformed responses
// fail immediately.
package gemini
