package main

import (
	"rostersync-backend/cmd/rostersync/commands"
	"rostersync-backend/lib/serviceutil"
	"rostersync-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "rostersync")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
