// Package generation defines how flashcards are generated from a document:
// the options a user picks, the documents accepted, the wire contract of the
// upload-generate endpoint, and the two interfaces on either side of it.
// Client is what the study client calls (implemented over HTTP by
// platform/generationapi); Generator is what the backend runs (implemented
// with Gemini by platform/gemini).
package generation
