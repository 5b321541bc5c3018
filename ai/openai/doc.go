// Package openai implements the ai interfaces against OpenAI-compatible
// embedding APIs, including local services such as Ollama, LocalAI and vLLM.
package openai
