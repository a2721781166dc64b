package bot

import (
	"github.com/babushkian/OTBot/handler"

	"github.com/bwmarrin/discordgo"
)

func registerEventHandlers(s *discordgo.Session) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(handler.OnMessageCreate)

	// 事件按接收顺序进入队列
	s.SyncEvents = true

	// 私信中的照片和文字需要 MessageContent
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
}
