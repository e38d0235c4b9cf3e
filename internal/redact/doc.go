// Package redact hides the values of sensitive fields in JSON and form bodies before they are logged.
package redact
