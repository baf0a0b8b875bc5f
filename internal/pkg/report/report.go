package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/donote/donote/app/repository"
)

const monthLayout = "2006-01"

// Row aggregates one creator's settlements within a month.
type Row struct {
	CreatorID         string `json:"creator_id"`
	AccountHolder     string `json:"account_holder"`
	BankName          string `json:"bank_name"`
	AccountNumber     string `json:"account_number"`
	BusinessType      string `json:"business_type"`
	BusinessRegNumber string `json:"business_reg_number"`
	Settlements       int    `json:"settlements"`
	GrossAmount       int64  `json:"gross_amount"`
	Fee               int64  `json:"fee"`
	NetAmount         int64  `json:"net_amount"`
}

// Monthly is the settlement report of one calendar month (UTC).
type Monthly struct {
	Month      string `json:"month"`
	Rows       []Row  `json:"rows"`
	TotalGross int64  `json:"total_gross"`
	TotalFee   int64  `json:"total_fee"`
	TotalNet   int64  `json:"total_net"`
}

// ParseMonth parses YYYY-MM into the first instant of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t, nil
}

// Service builds settlement reports from the ledger.
type Service struct {
	settlements repository.SettlementRepository
	infos       repository.CreatorSettlementInfoRepository
}

func NewService(settlements repository.SettlementRepository, infos repository.CreatorSettlementInfoRepository) *Service {
	return &Service{settlements: settlements, infos: infos}
}

// Monthly aggregates every non-rejected settlement requested in month.
func (s *Service) Monthly(ctx context.Context, month time.Time) (*Monthly, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	settlements, err := s.settlements.ListUnrejectedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}

	byCreator := make(map[string]*Row)
	for _, st := range settlements {
		row, ok := byCreator[st.CreatorID]
		if !ok {
			row = &Row{CreatorID: st.CreatorID}
			byCreator[st.CreatorID] = row
		}
		row.Settlements++
		row.GrossAmount += st.Amount
		row.Fee += st.Fee
		row.NetAmount += st.NetAmount
	}

	creatorIDs := make([]string, 0, len(byCreator))
	for id := range byCreator {
		creatorIDs = append(creatorIDs, id)
	}
	sort.Strings(creatorIDs)

	infos, err := s.infos.GetByCreatorIDs(ctx, creatorIDs)
	if err != nil {
		return nil, fmt.Errorf("load settlement info: %w", err)
	}

	out := &Monthly{Month: from.Format(monthLayout), Rows: make([]Row, 0, len(creatorIDs))}
	for _, id := range creatorIDs {
		row := byCreator[id]
		if info, ok := infos[id]; ok {
			row.AccountHolder = info.AccountHolder
			row.BankName = info.BankName
			row.AccountNumber = info.MaskedAccountNumber()
			row.BusinessType = info.BusinessType
			row.BusinessRegNumber = info.BusinessRegNumber
		}
		out.Rows = append(out.Rows, *row)
		out.TotalGross += row.GrossAmount
		out.TotalFee += row.Fee
		out.TotalNet += row.NetAmount
	}
	return out, nil
}
