package commands

import (
	"context"
	"fmt"

	"github.com/sergeii/twintail/cmd/twintail/commander"
	"github.com/sergeii/twintail/internal/apkmeta"
)

type AppInfoCmd struct {
	APK string `arg:"" type:"path" help:"Path to an APK or XAPK to extract app version/hash from."`
}

func (c AppInfoCmd) Run(_ context.Context, _ *commander.Globals) error {
	info, err := apkmeta.Extract(c.APK)
	if err != nil {
		return err
	}
	fmt.Printf("app-version: %s\napp-hash: %s\n", info.AppVersion, info.AppHash)
	return nil
}
