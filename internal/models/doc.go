// Package models lists the chat models available to an OpenAI API key, so
// users can pick one for the openai translation provider.
package models
