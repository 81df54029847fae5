// Package provider declares the data-provider ports the resolver reads
// from. Adapters live in subpackages (memory, google) and in storage.
package provider

import (
	"context"

	"finboard/internal/core"
)

// Ports for outbound adapters. A missing period is reported with an error
// wrapping core.ErrPeriodNotFound.
type (
	ChartDataReader interface {
		ReadChartData(ctx context.Context, key core.PeriodKey) (core.ChartDataset, error)
	}

	StatsReader interface {
		ReadStatsSummary(ctx context.Context, key core.PeriodKey) (core.StatsSummary, error)
	}

	BreakdownReader interface {
		// ReadBreakdowns returns the expense-category and payment-method
		// distributions of a period.
		ReadBreakdowns(ctx context.Context, key core.PeriodKey) (expenses, payments core.Breakdown, err error)
	}

	PeriodLister interface {
		ListPeriods(ctx context.Context) ([]core.PeriodKey, error)
	}

	PeriodWriter interface {
		WritePeriod(ctx context.Context, r core.PeriodRecord) error
	}

	// Reader bundles every read port.
	Reader interface {
		ChartDataReader
		StatsReader
		BreakdownReader
		PeriodLister
	}
)
