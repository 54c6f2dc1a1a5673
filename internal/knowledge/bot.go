package knowledge

import (
	"fmt"

	"github.com/mark-chris/supportbot/internal/config"
)

// LoaderFunc builds a knowledge base from the bot configuration
type LoaderFunc func(cfg config.BotConfig) (*KnowledgeBase, error)

// LoadFromDisk reads the configured knowledge file or directory
func LoadFromDisk(cfg config.BotConfig) (*KnowledgeBase, error) {
	return NewLoader(cfg.KnowledgePath).LoadKnowledge()
}

// SupportBot wires a configuration to the keyword responder
type SupportBot struct {
	config    config.BotConfig
	knowledge *KnowledgeBase
}

// NewSupportBot loads the knowledge base once with load
func NewSupportBot(cfg config.BotConfig, load LoaderFunc) (*SupportBot, error) {
	if load == nil {
		load = LoadFromDisk
	}
	kb, err := load(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}
	return &SupportBot{config: cfg, knowledge: kb}, nil
}

// Config returns the bot configuration
func (b *SupportBot) Config() config.BotConfig {
	return b.config
}

// Respond returns the most appropriate reply from the knowledge base
func (b *SupportBot) Respond(question string) string {
	return ChooseResponse(b.knowledge, question)
}

// Knowledge returns the loaded knowledge base
func (b *SupportBot) Knowledge() *KnowledgeBase {
	return b.knowledge
}
