// Package discord 通过 Discord Bot 向用户发送私信
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Messenger 基于 discordgo REST 接口的私信发送器，不建立 Gateway 连接
type Messenger struct {
	session *discordgo.Session
}

// NewMessenger 使用 Bot Token 创建发送器
func NewMessenger(botToken string) (*Messenger, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}
	return &Messenger{session: session}, nil
}

// SendEmbed 打开（或复用）与用户的私信频道并发送 Embed
// API 错误以 *discordgo.RESTError 原样返回
func (m *Messenger) SendEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = m.session.ChannelMessageSendEmbed(channel.ID, embed, discordgo.WithContext(ctx))
	return err
}
