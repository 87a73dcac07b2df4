package dto

import "time"

const RoleUser = "user"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the OpenAI-compatible body accepted by ZkAGI.
// ZKProof asks the provider to attach a verifiable-computation proof.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	ZKProof  bool          `json:"zk_proof"`
}

type ChatCompletionResponse struct {
	Choices []ChatChoice `json:"choices"`
}

type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// AIAnalysisResult is the first choice returned by the model together with
// how long the provider took to answer.
type AIAnalysisResult struct {
	Message ChatMessage
	Elapsed time.Duration
}
