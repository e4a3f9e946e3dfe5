package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	conf, err := Decode(`
[mainConfig]
port = 8443
corsOrigins = ["https://bot.example"]

[notifyConfig]
mode = "kafka"
topic = "votes"
timeout = 2

[voteConfig]
domain = "https://bot.example/"
ownerIds = ["999"]

[voteSettings]
maxTitleLength = 0
requireBody = true

[voteSettings.userChangeNotificationEmbed.approved]
color = "#00ff00"
`)
	require.NoError(t, err)

	assert.Equal(t, 8443, conf.MainConfig.Port)
	assert.Equal(t, []string{"https://bot.example"}, conf.MainConfig.CorsOrigins)
	assert.Equal(t, "kafka", conf.NotifyConfig.Mode)
	assert.EqualValues(t, 2, conf.NotifyConfig.Timeout)
	assert.Equal(t, []string{"999"}, conf.VoteConfig.OwnerIDs)

	require.NotNil(t, conf.VoteSettingsConfig.MaxTitleLength)
	assert.Equal(t, 0, *conf.VoteSettingsConfig.MaxTitleLength)
	require.NotNil(t, conf.VoteSettingsConfig.RequireBody)
	assert.True(t, *conf.VoteSettingsConfig.RequireBody)
	assert.Nil(t, conf.VoteSettingsConfig.MinBodyLength)

	embed := conf.VoteSettingsConfig.UserChangeNotificationEmbed["approved"]
	require.NotNil(t, embed.Color)
	assert.Equal(t, "#00ff00", *embed.Color)
	assert.Nil(t, embed.Title)
}

func TestDecodeRejectsInvalidToml(t *testing.T) {
	_, err := Decode("[mainConfig\nport = 1")
	assert.Error(t, err)
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", " token ")
	t.Setenv("VOTE_WEBHOOK_URL", "https://discord.test/api/webhooks/1/x")

	conf := new(Config)
	applyEnv(conf)

	assert.Equal(t, "token", conf.DiscordConfig.BotToken)
	assert.Equal(t, "https://discord.test/api/webhooks/1/x", conf.VoteConfig.WebhookURL)
}
