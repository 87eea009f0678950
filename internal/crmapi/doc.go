// Package crmapi is the HTTP client for the CRM API.
//
// Every endpoint lives directly under the configured base URL
// (get_leads, add_lead, edit_lead, get_tasks, add_task, edit_task, verify)
// and answers with the same envelope:
//
//	{"status": "success", "data": ..., "total": 42, "message": "..."}
//
// Reads are GET requests whose filters travel in the query string; writes are
// POST requests with a JSON body. The API speaks snake_case and sends most
// values as strings, so wire.go holds the translation to and from the typed
// crm entities, with enum values going through the crm codecs.
//
// Errors are classified with crmerr: transport failures, non-2xx responses and
// undecodable bodies are network errors; a non-success envelope is an API
// error carrying the server's message. The client never retries.
package crmapi
