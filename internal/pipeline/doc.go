// Package pipeline turns a menu view into printable HTML.
//
// It covers the document side of an export:
//   - rendering the menu template with contextual escaping (MenuRenderer)
//   - optional inline Markdown for notes and assumptions (NoteConverter)
//   - building the mount document used for rasterization (BuildMount)
//
// Printing and rasterization are handled by the root menupdf package using
// headless Chrome (go-rod). This package never touches a browser.
package pipeline
