// Package pipeline prepares report body fragments read from files.
//
// Markdown bodies are converted to HTML fragments with goldmark. HTML bodies
// pass through unchanged. In both cases relative references to files that
// exist next to the body (images, stylesheets) can be rewritten to file://
// URLs, so they resolve locally while everything else keeps resolving
// against the report's base URL.
//
// Fragments are never wrapped in a document: the report assembler owns the
// document skeleton.
package pipeline
