package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/jobdelivery"
	"github.com/go-petr/pet-ledger/internal/joblock"
)

func TestRunJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	assetID := int64(4)
	params := domain.RunParams{Now: now, AssetID: &assetID}

	result := domain.NewRunResult()
	result.Processed = 1
	result.IDs = []int64{4}

	testCases := []struct {
		name       string
		dryRun     bool
		buildStubs func(engine *jobdelivery.MockEngine, locker *jobdelivery.MockLocker)
		wantErr    error
		check      func(t *testing.T, out []byte)
	}{
		{
			name: "Run",
			buildStubs: func(engine *jobdelivery.MockEngine, locker *jobdelivery.MockLocker) {
				acquire := locker.EXPECT().
					Acquire(gomock.Any(), domain.JobInterestAccrual).
					Times(1).
					Return(func() {}, nil)
				engine.EXPECT().
					Run(gomock.Any(), params).
					Times(1).
					After(acquire).
					Return(result, nil)
			},
			check: func(t *testing.T, out []byte) {
				var got domain.RunResult
				require.NoError(t, json.Unmarshal(out, &got))
				require.Equal(t, 1, got.Processed)
				require.Equal(t, []int64{4}, got.IDs)
			},
		},
		{
			name:   "DryRun",
			dryRun: true,
			buildStubs: func(engine *jobdelivery.MockEngine, locker *jobdelivery.MockLocker) {
				locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Times(0)
				engine.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
				engine.EXPECT().
					Candidates(gomock.Any(), params).
					Times(1).
					Return(domain.CandidatesResult{Count: 1, Candidates: []domain.Asset{{ID: 4}}}, nil)
			},
			check: func(t *testing.T, out []byte) {
				var got domain.CandidatesResult
				require.NoError(t, json.Unmarshal(out, &got))
				require.Equal(t, 1, got.Count)
			},
		},
		{
			name: "ErrJobInProgress",
			buildStubs: func(engine *jobdelivery.MockEngine, locker *jobdelivery.MockLocker) {
				locker.EXPECT().
					Acquire(gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, domain.ErrJobInProgress)
				engine.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrJobInProgress,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			engine := jobdelivery.NewMockEngine(ctrl)
			locker := jobdelivery.NewMockLocker(ctrl)
			tc.buildStubs(engine, locker)

			var out bytes.Buffer

			err := runJob(context.Background(), &out, engine, locker, domain.JobInterestAccrual, params, tc.dryRun)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("runJob returned error: %v, want %v", err, tc.wantErr)
			}

			if tc.check != nil {
				tc.check(t, out.Bytes())
			}
		})
	}
}

func TestRunJobNopLocker(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := jobdelivery.NewMockEngine(ctrl)
	engine.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).Return(domain.NewRunResult(), nil)

	var out bytes.Buffer

	err := runJob(context.Background(), &out, engine, joblock.NopLocker{}, domain.JobClosePrice, domain.RunParams{}, false)
	require.NoError(t, err)
	require.Contains(t, out.String(), `"processed": 0`)
}

func TestHashPasswordUsage(t *testing.T) {
	t.Parallel()

	f := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	require.NoError(t, f.Parse(nil))

	status := (&hashPasswordCmd{}).Execute(context.Background(), f)
	require.Equal(t, subcommands.ExitUsageError, status)
}

func TestCommandNames(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range commands {
		names = append(names, c.Name())
	}

	require.Equal(t, []string{"accrue", "revalue", "migrate", "hash-password"}, names)
}
