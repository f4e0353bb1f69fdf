package writer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/router"
	"github.com/rickgao/itch-data/internal/stocks"
)

func sym(s string) itch.Symbol {
	var out itch.Symbol
	copy(out[:], s)
	for i := len(s); i < len(out); i++ {
		out[i] = ' '
	}
	return out
}

func mpid(s string) itch.MPID {
	var out itch.MPID
	copy(out[:], s)
	for i := len(s); i < len(out); i++ {
		out[i] = ' '
	}
	return out
}

func testConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     10,
		FlushInterval: time.Second,
		SessionID:     uuid.MustParse("11111111-2222-3333-4444-555555555555"),
	}
}

// testRegistry returns a registry that knows locate 7 as AAPL.
func testRegistry(t *testing.T) stocks.Registry {
	t.Helper()
	reg := stocks.NewRegistry(nil)
	reg.Apply(itch.Message{
		Tag:         'R',
		StockLocate: 7,
		Body:        itch.StockDirectory{Stock: sym("AAPL")},
	})
	return reg
}

// fakeDB satisfies batchSender and records each batch along with the
// context state it was sent under.
type fakeDB struct {
	mu      sync.Mutex
	batches []int
	ctxErrs []error
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b.Len())
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return &fakeBatchResults{}
}

func (f *fakeDB) totalRows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.batches {
		n += c
	}
	return n
}

type fakeBatchResults struct{}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, nil }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (r *fakeBatchResults) Close() error             { return nil }

func TestOrderTransform(t *testing.T) {
	w := NewOrderWriter(testConfig(), nil, testRegistry(t), nil, nil)

	tests := []struct {
		name string
		msg  itch.Message
		want orderEventRow
	}{
		{
			name: "add order",
			msg: itch.Message{
				Tag:         'A',
				StockLocate: 7,
				Timestamp:   1000,
				Body: itch.AddOrder{
					Reference: 42,
					Side:      itch.SideBuy,
					Shares:    100,
					Stock:     sym("AAPL"),
					Price:     1234500,
				},
			},
			want: orderEventRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 1000,
				StockLocate: 7,
				Tag:         "A",
				Reference:   42,
				Side:        "B",
				Shares:      100,
				Symbol:      "AAPL",
				Price:       1234500,
			},
		},
		{
			name: "attributed add carries mpid",
			msg: itch.Message{
				Tag:         'F',
				StockLocate: 7,
				Timestamp:   2000,
				Body: itch.AddOrderAttributed{
					Reference:   43,
					Side:        itch.SideSell,
					Shares:      200,
					Stock:       sym("AAPL"),
					Price:       1234600,
					Attribution: mpid("LEHM"),
				},
			},
			want: orderEventRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 2000,
				StockLocate: 7,
				Tag:         "F",
				Reference:   43,
				Side:        "S",
				Shares:      200,
				Symbol:      "AAPL",
				Price:       1234600,
				MPID:        "LEHM",
			},
		},
		{
			name: "execution resolves symbol from registry",
			msg: itch.Message{
				Tag:         'E',
				StockLocate: 7,
				Timestamp:   3000,
				Body: itch.OrderExecuted{
					Reference:   42,
					Executed:    50,
					MatchNumber: 9001,
				},
			},
			want: orderEventRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 3000,
				StockLocate: 7,
				Tag:         "E",
				Reference:   42,
				Shares:      50,
				Symbol:      "AAPL",
				MatchNumber: 9001,
			},
		},
		{
			name: "execution with unknown locate leaves symbol empty",
			msg: itch.Message{
				Tag:         'E',
				StockLocate: 99,
				Timestamp:   3500,
				Body:        itch.OrderExecuted{Reference: 42, Executed: 50, MatchNumber: 9002},
			},
			want: orderEventRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 3500,
				StockLocate: 99,
				Tag:         "E",
				Reference:   42,
				Shares:      50,
				MatchNumber: 9002,
			},
		},
		{
			name: "replace keeps both references",
			msg: itch.Message{
				Tag:         'U',
				StockLocate: 7,
				Timestamp:   4000,
				Body: itch.OrderReplaced{
					OldReference: 42,
					NewReference: 77,
					Shares:       80,
					Price:        1234700,
				},
			},
			want: orderEventRow{
				SessionID:    w.cfg.SessionID,
				TimestampNs:  4000,
				StockLocate:  7,
				Tag:          "U",
				Reference:    42,
				NewReference: 77,
				Shares:       80,
				Symbol:       "AAPL",
				Price:        1234700,
			},
		},
		{
			name: "priced execution marks printable",
			msg: itch.Message{
				Tag:         'C',
				StockLocate: 7,
				Timestamp:   5000,
				Body: itch.OrderExecutedWithPrice{
					Reference:   42,
					Executed:    25,
					MatchNumber: 9003,
					Printable:   true,
					Price:       1230000,
				},
			},
			want: orderEventRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 5000,
				StockLocate: 7,
				Tag:         "C",
				Reference:   42,
				Shares:      25,
				Symbol:      "AAPL",
				Price:       1230000,
				MatchNumber: 9003,
				Printable:   true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := w.transform(tc.msg)
			if got != tc.want {
				t.Errorf("transform() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTradeTransform(t *testing.T) {
	w := NewTradeWriter(testConfig(), nil, testRegistry(t), nil, nil)

	tests := []struct {
		name string
		msg  itch.Message
		want tradeRow
	}{
		{
			name: "non-displayed trade",
			msg: itch.Message{
				Tag:         'P',
				StockLocate: 7,
				Timestamp:   1000,
				Body: itch.Trade{
					Reference:   0,
					Side:        itch.SideBuy,
					Shares:      300,
					Stock:       sym("AAPL"),
					Price:       1234500,
					MatchNumber: 5001,
				},
			},
			want: tradeRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 1000,
				StockLocate: 7,
				Tag:         "P",
				Symbol:      "AAPL",
				Side:        "B",
				Shares:      300,
				Price:       1234500,
				MatchNumber: 5001,
			},
		},
		{
			name: "cross trade keeps cross type",
			msg: itch.Message{
				Tag:         'Q',
				StockLocate: 7,
				Timestamp:   2000,
				Body: itch.CrossTrade{
					Shares:      100000,
					Stock:       sym("AAPL"),
					Price:       1230000,
					MatchNumber: 5002,
					Cross:       itch.CrossOpening,
				},
			},
			want: tradeRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 2000,
				StockLocate: 7,
				Tag:         "Q",
				Symbol:      "AAPL",
				Shares:      100000,
				Price:       1230000,
				MatchNumber: 5002,
				CrossType:   "O",
			},
		},
		{
			name: "broken trade resolves symbol from registry",
			msg: itch.Message{
				Tag:         'B',
				StockLocate: 7,
				Timestamp:   3000,
				Body:        itch.BrokenTrade{MatchNumber: 5001},
			},
			want: tradeRow{
				SessionID:   w.cfg.SessionID,
				TimestampNs: 3000,
				StockLocate: 7,
				Tag:         "B",
				Symbol:      "AAPL",
				MatchNumber: 5001,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := w.transform(tc.msg)
			if got != tc.want {
				t.Errorf("transform() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEventTransformDirectory(t *testing.T) {
	w := NewEventWriter(testConfig(), nil, nil, nil)

	dir := itch.StockDirectory{
		Stock:             sym("AAPL"),
		Category:          itch.CategoryNasdaqGlobalSelect,
		FinancialStatus:   itch.FinancialNormal,
		RoundLotSize:      100,
		RoundLotsOnly:     true,
		Classification:    itch.ClassCommonStock,
		SubType:           itch.SubTypeNotApplicable,
		Authenticity:      itch.AuthenticityProduction,
		LuldTier:          itch.LuldTier1,
		ETPLeverageFactor: 0,
	}
	msg := itch.Message{Tag: 'R', StockLocate: 7, Timestamp: 500, Body: dir}

	got := w.transformDirectory(msg, dir)
	want := directoryRow{
		SessionID:       w.cfg.SessionID,
		TimestampNs:     500,
		StockLocate:     7,
		Symbol:          "AAPL",
		Category:        "NasdaqGlobalSelect",
		FinancialStatus: "Normal",
		RoundLotSize:    100,
		RoundLotsOnly:   true,
		Classification:  "CommonStock",
		SubType:         "NotApplicable",
		Authenticity:    "Production",
		LuldTier:        "Tier1",
	}
	if got != want {
		t.Errorf("transformDirectory() = %+v, want %+v", got, want)
	}
}

func TestEventTransformDetail(t *testing.T) {
	w := NewEventWriter(testConfig(), nil, nil, nil)

	tests := []struct {
		name       string
		msg        itch.Message
		wantSymbol string
		wantDetail string
	}{
		{
			name: "system event",
			msg: itch.Message{
				Tag:  'S',
				Body: itch.SystemEvent{Event: itch.EventStartOfMessages},
			},
			wantDetail: "StartOfMessages",
		},
		{
			name: "trading action",
			msg: itch.Message{
				Tag:         'H',
				StockLocate: 7,
				Body: itch.TradingAction{
					Stock:  sym("AAPL"),
					State:  itch.StateHalted,
					Reason: [4]byte{'T', '1', ' ', ' '},
				},
			},
			wantSymbol: "AAPL",
			wantDetail: "state=Halted reason=T1  ",
		},
		{
			name: "circuit breaker levels",
			msg: itch.Message{
				Tag: 'V',
				Body: itch.MwcbDeclineLevel{
					Level1: 400000000000,
					Level2: 380000000000,
					Level3: 350000000000,
				},
			},
			wantDetail: "level1=4000.00000000 level2=3800.00000000 level3=3500.00000000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := w.transformEvent(tc.msg)
			if got.Symbol != tc.wantSymbol {
				t.Errorf("Symbol = %q, want %q", got.Symbol, tc.wantSymbol)
			}
			if got.Detail != tc.wantDetail {
				t.Errorf("Detail = %q, want %q", got.Detail, tc.wantDetail)
			}
		})
	}
}

func TestOrderWriterStopFlushesTail(t *testing.T) {
	buf := router.NewGrowableBuffer[itch.Message](16)
	db := &fakeDB{}
	w := NewOrderWriter(testConfig(), buf, testRegistry(t), db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		buf.Send(itch.Message{
			Tag:         'A',
			StockLocate: 7,
			Timestamp:   uint64(1000 + i),
			Body: itch.AddOrder{
				Reference: uint64(100 + i),
				Side:      itch.SideBuy,
				Shares:    100,
				Stock:     sym("AAPL"),
				Price:     1234500,
			},
		})
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := db.totalRows(); got != 3 {
		t.Errorf("rows sent = %d, want 3", got)
	}
	for i, err := range db.ctxErrs {
		if err != nil {
			t.Errorf("batch %d sent under dead context: %v", i, err)
		}
	}
	if got := w.Stats().Inserts; got != 3 {
		t.Errorf("Inserts = %d, want 3", got)
	}
}

func TestTradeWriterStopFlushesTail(t *testing.T) {
	buf := router.NewGrowableBuffer[itch.Message](16)
	db := &fakeDB{}
	w := NewTradeWriter(testConfig(), buf, testRegistry(t), db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		buf.Send(itch.Message{
			Tag:         'P',
			StockLocate: 7,
			Timestamp:   uint64(2000 + i),
			Body: itch.Trade{
				Reference:   1,
				Side:        itch.SideSell,
				Shares:      50,
				Stock:       sym("AAPL"),
				Price:       1234500,
				MatchNumber: uint64(500 + i),
			},
		})
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := db.totalRows(); got != 3 {
		t.Errorf("rows sent = %d, want 3", got)
	}
	for i, err := range db.ctxErrs {
		if err != nil {
			t.Errorf("batch %d sent under dead context: %v", i, err)
		}
	}
}

func TestEventWriterStopFlushesTail(t *testing.T) {
	buf := router.NewGrowableBuffer[itch.Message](16)
	db := &fakeDB{}
	w := NewEventWriter(testConfig(), buf, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	buf.Send(itch.Message{
		Tag:  'S',
		Body: itch.SystemEvent{Event: itch.EventStartOfMessages},
	})
	buf.Send(itch.Message{
		Tag:         'R',
		StockLocate: 7,
		Body:        itch.StockDirectory{Stock: sym("AAPL")},
	})
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := db.totalRows(); got != 2 {
		t.Errorf("rows sent = %d, want 2", got)
	}
	for i, err := range db.ctxErrs {
		if err != nil {
			t.Errorf("batch %d sent under dead context: %v", i, err)
		}
	}
}

func TestSQLSymbolTrimsPadding(t *testing.T) {
	if got := sqlSymbol(sym("GE")); got != "GE" {
		t.Errorf("sqlSymbol() = %q, want %q", got, "GE")
	}
	if got := sqlMPID(mpid("VIRT")); got != "VIRT" {
		t.Errorf("sqlMPID() = %q, want %q", got, "VIRT")
	}
}
