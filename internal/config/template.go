package config

import "fmt"

// DefaultTemplate is the commented config file written by `testlens config`.
func DefaultTemplate() string {
	return fmt.Sprintf(`# testlens configuration
# Uncomment a value to enable it. CLI flags override config values.
# API keys are read from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
# ANTHROPIC_API_KEY) or from %s.

[report]
# format = "text"          # text, markdown or json
# width = 0                # Line width for text output (0 = terminal width)
# color = false            # Force colour even when not writing to a terminal
# narrative = true         # Ask the LLM for written feedback

[buckets]
# bounds = [30, 60, 120]   # Upper bounds in seconds of the time buckets

[llm]
# provider = "gemini"      # gemini, openai, anthropic or mock
# gemini-model = "gemini-flash"
# openai-model = "gpt-4o-mini"
# anthropic-model = "claude-haiku"
# base-url = ""            # OpenAI-compatible endpoint
# timeout = "60s"          # Per-report limit, retries included
# max-attempts = 3

[batch]
# workers = 4              # Records processed in parallel

[store]
# path = %q
# save = true              # Keep every report in the history database

[server]
# addr = ":8080"
# allowed-origins = ["http://localhost:3000"]
`, DefaultEnvPath(), DefaultDBPath())
}
