package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUnderwritingConfig(t *testing.T) {
	assert.NoError(t, validateUnderwritingConfig(DefaultUnderwritingConfig()))

	cfg := DefaultUnderwritingConfig()
	cfg.MinAge = 70
	assert.Error(t, validateUnderwritingConfig(cfg))

	cfg = DefaultUnderwritingConfig()
	cfg.MaxPoliciesPerEmployee = 0
	assert.Error(t, validateUnderwritingConfig(cfg))

	cfg = DefaultUnderwritingConfig()
	cfg.DuplicateStatuses = nil
	assert.Error(t, validateUnderwritingConfig(cfg))
}

func TestUnderwritingConfigHolderDefaults(t *testing.T) {
	var holder *UnderwritingConfigHolder
	assert.Equal(t, DefaultUnderwritingConfig(), holder.Get())

	static := NewStaticUnderwritingConfigHolder(UnderwritingConfig{MinInsuredCount: 5, MinAge: 18, MaxAge: 60, MaxPoliciesPerEmployee: 2})
	assert.Equal(t, 5, static.Get().MinInsuredCount)
	assert.Equal(t, 60, static.Get().MaxAge)
}

func TestParseTokens(t *testing.T) {
	tokens := parseTokens(" abc:admin , def:operator,broken, :viewer,ghi: ")
	assert.Equal(t, map[string]string{"abc": "admin", "def": "operator"}, tokens)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"expire_applications", "other"}, parseList(" expire_applications, ,other "))
	assert.Nil(t, parseList(""))
}
