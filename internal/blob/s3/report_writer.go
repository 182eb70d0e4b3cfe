package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// ReportWriter implements domain.ReportWriter by uploading one JSON document
// per round trip, keyed by date and round-trip ID so reports are browsable
// with plain bucket listing.
type ReportWriter struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewReportWriter creates a ReportWriter uploading into the client's bucket
// under the given key prefix (e.g. "reports").
func NewReportWriter(c *Client, prefix string) *ReportWriter {
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportWriter{
		client: c.S3(),
		bucket: c.Bucket(),
		prefix: prefix,
	}
}

type reportLeg struct {
	Dex       string `json:"dex"`
	FromAsset string `json:"from_asset"`
	ToAsset   string `json:"to_asset"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	QuotedOut string `json:"quoted_out"`
	Slippage  string `json:"slippage"`
	Settled   bool   `json:"settled"`
}

type report struct {
	ID          string      `json:"id"`
	Network     string      `json:"network"`
	StartAsset  string      `json:"start_asset"`
	AmountIn    string      `json:"amount_in"`
	AmountOut   string      `json:"amount_out"`
	MinProfit   string      `json:"min_profit"`
	Profit      string      `json:"profit"`
	Status      string      `json:"status"`
	Legs        []reportLeg `json:"legs"`
	StartedAt   string      `json:"started_at"`
	CompletedAt string      `json:"completed_at,omitempty"`
}

// WriteReport serializes the round trip and uploads it as
// {prefix}/{YYYY-MM-DD}/{id}.json.
func (w *ReportWriter) WriteReport(ctx context.Context, rt domain.RoundTrip) error {
	r := report{
		ID:         rt.ID,
		Network:    rt.Network,
		StartAsset: rt.StartAsset,
		AmountIn:   rt.AmountIn.String(),
		AmountOut:  rt.AmountOut.String(),
		MinProfit:  rt.MinProfit.String(),
		Profit:     rt.Profit.String(),
		Status:     string(rt.Status),
		StartedAt:  rt.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if rt.CompletedAt != nil {
		r.CompletedAt = rt.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	for _, leg := range rt.Legs {
		r.Legs = append(r.Legs, reportLeg{
			Dex:       leg.Dex,
			FromAsset: leg.FromAssetID,
			ToAsset:   leg.ToAssetID,
			AmountIn:  leg.AmountIn.String(),
			AmountOut: leg.AmountOut.String(),
			QuotedOut: leg.QuotedOut.String(),
			Slippage:  leg.Slippage.String(),
			Settled:   leg.Settled,
		})
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: marshal report %s: %w", rt.ID, err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", w.prefix, rt.StartedAt.UTC().Format("2006-01-02"), rt.ID)
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put report %s: %w", key, err)
	}
	return nil
}

var _ domain.ReportWriter = (*ReportWriter)(nil)
