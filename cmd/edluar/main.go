// Command edluar runs and drives the application-stage pipeline.
//
// Serves the pipeline over REST and gRPC, keeps stage history, closes jobs
// when their headcount is reached and publishes EVENT_STAGE_CHANGED /
// EVENT_JOB_CLOSED to Redis. Client commands (list, move, advance, board)
// talk to a running server.
package main

import "edluar/pipeline/internal/cli"

func main() {
	cli.Execute()
}
