package def

import "github.com/bwmarrin/discordgo"

var LocationCommand = &discordgo.ApplicationCommand{
	Name:                     "location",
	Description:              "Manage the locations reporters choose from",
	DefaultMemberPermissions: &[]int64{discordgo.PermissionAdministrator}[0],
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "участок",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List all locations",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Add a location or update an existing one",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Location name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "Short description",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "responsible",
					Description: "Person responsible for the location",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a location",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Location id as shown by /location list",
					Required:    true,
				},
			},
		},
	},
}
