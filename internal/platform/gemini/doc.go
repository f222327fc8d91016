// Package gemini provides an implementation of the generation.Generator
// interface backed by Google's Gemini API.
//
// The generator renders a prompt from the caller's options (language, detail
// level, keywords and study goal), attaches the document, and asks the model
// for a JSON array of question/answer pairs:
//
//   - .txt documents are sent as text
//   - .pdf documents are sent as inline bytes
//   - .docx documents are converted to text first
//
// Transient API failures are retried with exponential backoff and jitter.
// Responses blocked by the model's safety filters surface as
// generation.ErrContentBlocked and are not retried.
package gemini
