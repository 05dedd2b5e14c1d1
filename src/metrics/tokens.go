package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalPromptTokens     = "total_prompt_tokens"
	NameTotalCompletionTokens = "total_completion_tokens"
	NameTotalTokens           = "total_tokens"
)

// PromptTokens counts tokens sent to the model, labelled by model.
var PromptTokens = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalPromptTokens,
		Help:      "Total prompt tokens sent to OpenAI",
		Namespace: Namespace,
	},
	[]string{LabelModel},
)

// CompletionTokens counts tokens returned by the model, labelled by model.
var CompletionTokens = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalCompletionTokens,
		Help:      "Total completion tokens returned by OpenAI",
		Namespace: Namespace,
	},
	[]string{LabelModel},
)

// TotalTokens counts overall token usage, labelled by model.
var TotalTokens = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalTokens,
		Help:      "Total tokens used per request",
		Namespace: Namespace,
	},
	[]string{LabelModel},
)
