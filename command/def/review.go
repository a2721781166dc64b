package def

import "github.com/bwmarrin/discordgo"

var CheckCommand = &discordgo.ApplicationCommand{
	Name:        "check",
	Description: "Review reports waiting for approval",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "проверка",
	},
	DMPermission: &[]bool{true}[0],
}

var CloseCommand = &discordgo.ApplicationCommand{
	Name:        "vclose",
	Description: "Mark active violations as corrected",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "устранено",
	},
	DMPermission: &[]bool{true}[0],
}

var ReportCommand = &discordgo.ApplicationCommand{
	Name:        "report",
	Description: "Build a report of violations",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "отчет",
	},
	DMPermission: &[]bool{true}[0],
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "status",
			Description: "Violations in one status",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "status",
					Description: "Which reports to include (default: active)",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "pending review", Value: "pending_review"},
						{Name: "active", Value: "active"},
						{Name: "corrected", Value: "corrected"},
						{Name: "rejected", Value: "rejected"},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "number",
			Description: "One violation by its number",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "number",
					Description: "Violation number",
					Required:    true,
					MinValue:    &[]float64{1}[0],
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "year",
					Description: "Year the violation was reported (default: this year)",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "today",
			Description: "Violations of the last 24 hours",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "month",
			Description: "Violations since the first day of this month",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "range",
			Description: "Violations reported between two days",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "from",
					Description: "First day, dd-mm-yyyy",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "to",
					Description: "Last day, dd-mm-yyyy",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "stats",
			Description: "Counts for the whole period",
		},
	},
}
