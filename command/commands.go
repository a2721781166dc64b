package command

import (
	"github.com/babushkian/OTBot/command/def"

	"github.com/bwmarrin/discordgo"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.DetectCommand,
	def.CancelCommand,
	def.CheckCommand,
	def.CloseCommand,
	def.ReportCommand,
	def.LocationCommand,
	def.ApproveCommand,
	def.DisapproveCommand,
	def.DeleteApprovalCommand,
}
