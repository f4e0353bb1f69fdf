package stocks

import (
	"testing"

	"github.com/rickgao/itch-data/internal/itch"
)

func sym(s string) itch.Symbol {
	var v itch.Symbol
	copy(v[:], s)
	return v
}

func directoryMsg(locate uint16, stock string) itch.Message {
	return itch.Message{
		Tag:         'R',
		StockLocate: locate,
		Body: itch.StockDirectory{
			Stock:          sym(stock),
			Category:       itch.CategoryNasdaqGlobalSelect,
			RoundLotSize:   100,
			Classification: itch.ClassCommonStock,
			SubType:        itch.SubTypeCommonShares,
			Authenticity:   itch.AuthenticityProduction,
		},
	}
}

func TestRegistryApplyDirectory(t *testing.T) {
	r := NewRegistry(nil)

	r.Apply(directoryMsg(7, "AAPL    "))
	r.Apply(directoryMsg(8, "MSFT    "))

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	entry, ok := r.Lookup(7)
	if !ok {
		t.Fatal("Lookup(7) not found")
	}
	if entry.Directory.Stock != sym("AAPL    ") {
		t.Errorf("Stock = %q, want %q", entry.Directory.Stock, "AAPL    ")
	}
	if entry.State != itch.StateTrading {
		t.Errorf("State = %v, want Trading", entry.State)
	}
	if entry.RegSho != itch.RegShoNone {
		t.Errorf("RegSho = %v, want None", entry.RegSho)
	}

	s, ok := r.Symbol(8)
	if !ok || s != sym("MSFT    ") {
		t.Errorf("Symbol(8) = %q, %v, want %q, true", s, ok, "MSFT    ")
	}

	if _, ok := r.Symbol(99); ok {
		t.Error("Symbol(99) ok = true, want false")
	}
}

func TestRegistryByStock(t *testing.T) {
	r := NewRegistry(nil)
	r.Apply(directoryMsg(7, "AAPL    "))

	entry, ok := r.ByStock(sym("AAPL    "))
	if !ok {
		t.Fatal("ByStock not found")
	}
	if entry.Locate != 7 {
		t.Errorf("Locate = %d, want 7", entry.Locate)
	}

	// Padding is significant: a trimmed symbol does not match.
	if _, ok := r.ByStock(sym("AAPL")); ok {
		t.Error("ByStock with different padding matched, want miss")
	}
}

func TestRegistryTradingAction(t *testing.T) {
	r := NewRegistry(nil)
	r.Apply(directoryMsg(7, "AAPL    "))

	r.Apply(itch.Message{
		Tag:         'H',
		StockLocate: 7,
		Body:        itch.TradingAction{Stock: sym("AAPL    "), State: itch.StateHalted},
	})

	entry, _ := r.Lookup(7)
	if entry.State != itch.StateHalted {
		t.Errorf("State = %v, want Halted", entry.State)
	}

	// Unknown locate is ignored, not created.
	r.Apply(itch.Message{
		Tag:         'H',
		StockLocate: 42,
		Body:        itch.TradingAction{Stock: sym("ZZZZ    "), State: itch.StateHalted},
	})
	if r.Len() != 1 {
		t.Errorf("Len() = %d after unknown-locate action, want 1", r.Len())
	}
}

func TestRegistryRegSho(t *testing.T) {
	r := NewRegistry(nil)
	r.Apply(directoryMsg(7, "AAPL    "))

	r.Apply(itch.Message{
		Tag:         'Y',
		StockLocate: 7,
		Body:        itch.RegShoRestriction{Stock: sym("AAPL    "), Action: itch.RegShoIntraday},
	})

	entry, _ := r.Lookup(7)
	if entry.RegSho != itch.RegShoIntraday {
		t.Errorf("RegSho = %v, want Intraday", entry.RegSho)
	}
}

func TestRegistryIgnoresOtherMessages(t *testing.T) {
	r := NewRegistry(nil)
	r.Apply(itch.Message{
		Tag:  'A',
		Body: itch.AddOrder{Reference: 1, Side: itch.SideBuy, Shares: 100, Stock: sym("AAPL    ")},
	})
	if r.Len() != 0 {
		t.Errorf("Len() = %d after AddOrder, want 0", r.Len())
	}
}
