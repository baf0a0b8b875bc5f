package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettlementFee(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{amount: 50000, want: 2500},
		{amount: 10000, want: 500},
		{amount: 10010, want: 501}, // 500.5 rounds up
		{amount: 10009, want: 500}, // 500.45 rounds down
		{amount: 12345, want: 617}, // 617.25
		{amount: 12350, want: 618}, // 617.5
		{amount: 0, want: 0},
		{amount: -100, want: 0},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, SettlementFee(tt.amount), "fee(%d)", tt.amount)
	}
}

func TestNewAutoSettlement(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewAutoSettlement("c1", 50000, "batch-1", now)

	assert.Equal(t, "c1", s.CreatorID)
	assert.Equal(t, int64(50000), s.Amount)
	assert.Equal(t, int64(2500), s.Fee)
	assert.Equal(t, int64(47500), s.NetAmount)
	assert.Equal(t, SettlementStatusApproved, s.Status)
	assert.True(t, s.IsAuto)
	assert.Equal(t, "batch-1", s.BatchID)
	assert.Equal(t, now, s.RequestedAt)
}

func TestNewAutoSettlementFeePlusNetIsAmount(t *testing.T) {
	for amount := int64(10000); amount < 10400; amount += 7 {
		s := NewAutoSettlement("c", amount, "", time.Now())
		assert.Equal(t, amount, s.Fee+s.NetAmount)
	}
}

func TestMaskedAccountNumber(t *testing.T) {
	info := &CreatorSettlementInfo{AccountNumber: "110123456789"}
	assert.Equal(t, "********6789", info.MaskedAccountNumber())

	short := &CreatorSettlementInfo{AccountNumber: "123"}
	assert.Equal(t, "123", short.MaskedAccountNumber())
}
