package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"edluar/pipeline/internal/model"
)

// Client calls the Pipeline service. It satisfies board.Store.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for target. The connection is lazy; the first call
// establishes it. Extra options are appended after the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	conn, err := grpc.NewClient(target, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) FetchApplications(ctx context.Context, jobID string) (model.Grouped, error) {
	out := new(FetchApplicationsResponse)
	if err := c.conn.Invoke(ctx, methodFetchApplications, &FetchApplicationsRequest{JobID: jobID}, out); err != nil {
		return nil, fromGRPCError(err)
	}
	return out.Columns, nil
}

func (c *Client) UpdateApplicationStage(ctx context.Context, applicationID string, st model.Status) (model.StageUpdate, error) {
	out := new(UpdateApplicationStageResponse)
	in := &UpdateApplicationStageRequest{ApplicationID: applicationID, Status: string(st)}
	if err := c.conn.Invoke(ctx, methodUpdateApplicationStage, in, out); err != nil {
		return model.StageUpdate{}, fromGRPCError(err)
	}
	return model.StageUpdate{Application: out.Application, SuggestAction: out.SuggestAction}, nil
}
