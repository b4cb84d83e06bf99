// Package render turns a team configuration into the Markdown documents a
// project ships with: the team-config export, the AI assistant prompt, a
// RACI matrix, and sprint plan and ADR skeletons. It also carries the
// prompt library and the static document template catalog.
//
// Every generator is a pure function of its input. Rendering the same
// configuration twice yields byte-identical output.
package render
