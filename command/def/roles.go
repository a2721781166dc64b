package def

import "github.com/bwmarrin/discordgo"

var ApproveCommand = &discordgo.ApplicationCommand{
	Name:                     "approve",
	Description:              "Grant a user the reporter or administrator role",
	DefaultMemberPermissions: &[]int64{discordgo.PermissionAdministrator}[0],
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "одобрить",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to approve",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "role",
			Description: "Role to grant",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "reporter", Value: "reporter"},
				{Name: "administrator", Value: "admin"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "Name shown in reports (default: the user's display name)",
		},
	},
}

var DisapproveCommand = &discordgo.ApplicationCommand{
	Name:                     "disapprove",
	Description:              "Take the granted role away from a user",
	DefaultMemberPermissions: &[]int64{discordgo.PermissionAdministrator}[0],
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "отозвать",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to disapprove",
			Required:    true,
		},
	},
}

var DeleteApprovalCommand = &discordgo.ApplicationCommand{
	Name:                     "delapprove",
	Description:              "Forget a disapproved user",
	DefaultMemberPermissions: &[]int64{discordgo.PermissionAdministrator}[0],
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "удалить",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to remove",
			Required:    true,
		},
	},
}
