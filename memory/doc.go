// Package memory holds the conversation history of a terminal session.
//
// Model:
//   - A Turn is a role plus text. Turns are never edited once appended.
//   - History grows by whole exchanges (user, then assistant) and is only
//     ever emptied by Reset.
//   - Transcripts on disk are optional and text-only.
package memory
