package def

import "github.com/bwmarrin/discordgo"

var DetectCommand = &discordgo.ApplicationCommand{
	Name:        "detect",
	Description: "Report a safety violation",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "нарушение",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "Зафиксировать нарушение охраны труда",
	},
	DMPermission: &[]bool{true}[0],
}

var CancelCommand = &discordgo.ApplicationCommand{
	Name:        "cancel",
	Description: "Abandon the report or review in progress",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "отмена",
	},
	DMPermission: &[]bool{true}[0],
}
