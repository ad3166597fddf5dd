package cli

import (
	"fmt"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

type RegionsCommand struct{}

func NewRegionsCommand() *RegionsCommand {
	return &RegionsCommand{}
}

func (cmd *RegionsCommand) Run() error {
	fmt.Println("Supported regions")
	fmt.Println("=================")
	for _, r := range kindle.Regions() {
		fmt.Printf("%-6s %-16s %s\n", r.Code, r.DisplayName, r.NotebookURL)
	}
	return nil
}
