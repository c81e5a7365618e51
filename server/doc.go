// Package server exposes subject listing, title listing and page search
// over HTTP with JSON bodies.
//
// Routes:
//
//	GET  /api/subjects             distinct subjects
//	GET  /api/pdf-titles/{subject} book titles in a subject
//	POST /api/searchquery          phrase search across selected books
//
// Errors are returned as {"error": "..."}. Internal failures are logged and
// answered with a generic message.
package server
