package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/boardpulse/boardpulse/internal/feed"
)

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

// kindColor maps event families to a terminal color.
func kindColor(k feed.Kind) func(format string, a ...interface{}) string {
	switch k {
	case feed.KindBoardChat, feed.KindBoardCommand:
		return color.CyanString
	case feed.KindApprovalCreated, feed.KindApprovalRejected:
		return color.RedString
	case feed.KindApprovalApproved:
		return color.GreenString
	case feed.KindAgentOnline:
		return color.GreenString
	case feed.KindAgentOffline:
		return color.YellowString
	default:
		return color.WhiteString
	}
}

// printItem renders one feed item as a log line.
func printItem(it feed.Item) {
	paint := kindColor(it.Kind)
	line := fmt.Sprintf("%s  %-22s", it.CreatedAt, it.Kind)
	if it.ActorName != "" {
		line += " " + it.ActorName
	}
	if it.Title != "" {
		line += " " + it.Title
	}
	if it.Message != "" {
		line += " " + it.Message
	}
	if it.TaskID != "" {
		line += color.HiBlackString(" (task %s)", it.TaskID)
	}
	fmt.Println(paint("%s", line))
}
