package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Write(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedis(rdb, "test")

	mock.ExpectSet("test:symbols/all/all_symbols.txt", []byte("AAPL\n"), 0).SetVal("OK")

	err := store.Write(context.Background(), "symbols/all/all_symbols.txt", []byte("AAPL\n"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Read(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		want    string
		wantErr error
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("symbol-store:symbols/nasdaq/nasdaq_symbols.txt").SetVal("AAPL\nMSFT\n")
			},
			want: "AAPL\nMSFT\n",
		},
		{
			name: "missing key",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("symbol-store:symbols/nasdaq/nasdaq_symbols.txt").RedisNil()
			},
			wantErr: entity.ErrNotFound,
		},
		{
			name: "connection error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("symbol-store:symbols/nasdaq/nasdaq_symbols.txt").SetErr(errors.New("connection refused"))
			},
			wantErr: entity.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			tt.setup(mock)

			data, err := NewRedis(rdb, "").Read(context.Background(), "symbols/nasdaq/nasdaq_symbols.txt")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(data))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedis_Exists(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedis(rdb, "test")

	mock.ExpectExists("test:symbols/fortune500/fortune500_list.json").SetVal(1)
	mock.ExpectExists("test:symbols/all/custom.txt").SetVal(0)

	exists, err := store.Exists(context.Background(), "symbols/fortune500/fortune500_list.json")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(context.Background(), "symbols/all/custom.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}
