// Package openai provides the remote embedding backend for OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM, and others exposing the /v1 surface).
package openai
