package llm

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// CerebrasClient uses the OpenAI-compatible request/response format.
type CerebrasClient struct {
	*OpenAIClient
}

func NewCerebrasClient(apiKey string) *CerebrasClient {
	c := NewOpenAIClient(apiKey).WithBaseURL(cerebrasAPIURL)
	c.model = cerebrasModel
	c.name = "cerebras"
	return &CerebrasClient{OpenAIClient: c}
}
