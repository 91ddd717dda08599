package risk

import (
	"math"
	"testing"

	"SignalSentinel/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculate_Buy(t *testing.T) {
	tests := []struct {
		name              string
		atr, sup, res     *float64
		sl, tp1, tp2, tp3 float64
	}{
		{"no levels", nil, nil, nil, 97.5, 102.5, 105, 106.25},
		{"atr wider than floor", model.Float(4), nil, nil, 94, 106, 112, 115},
		{"floor beats tight levels", model.Float(1), model.Float(99), nil, 97.5, 102.5, 105, 106.25},
		{"support below atr stop", model.Float(1), model.Float(90), nil, 89.82, 110.18, 120.36, 125.45},
		{"resistance caps tp3", nil, nil, model.Float(106), 97.5, 102.5, 105, 105.788},
		{"resistance under tp2 ignored", nil, nil, model.Float(104), 97.5, 102.5, 105, 106.25},
		{"resistance below price ignored", nil, nil, model.Float(99), 97.5, 102.5, 105, 106.25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Calculate(100, model.DirectionBuy, tc.atr, tc.sup, tc.res)
			if p == nil {
				t.Fatal("expected plan")
			}
			if !approx(p.StopLoss, tc.sl) || !approx(p.TP1, tc.tp1) || !approx(p.TP2, tc.tp2) || !approx(p.TP3, tc.tp3) {
				t.Errorf("got sl=%.4f tp=%.4f/%.4f/%.4f, want %.4f %.4f/%.4f/%.4f",
					p.StopLoss, p.TP1, p.TP2, p.TP3, tc.sl, tc.tp1, tc.tp2, tc.tp3)
			}
		})
	}
}

func TestCalculate_SellMirrorsBuy(t *testing.T) {
	p := Calculate(100, model.DirectionSell, nil, nil, nil)
	if !approx(p.StopLoss, 102.5) || !approx(p.TP1, 97.5) || !approx(p.TP2, 95) || !approx(p.TP3, 93.75) {
		t.Errorf("unexpected plan: %+v", p)
	}

	p = Calculate(100, model.DirectionSell, model.Float(1), model.Float(94), model.Float(110))
	// resistance stop: 110*1.002 = 110.22, risk 10.22
	if !approx(p.StopLoss, 110.22) {
		t.Errorf("expected sl 110.22, got %.4f", p.StopLoss)
	}
	// tp3 = 74.45 uncapped; support 94*1.002 = 94.188 sits above tp2 (79.56), so ignored
	if !approx(p.TP3, 100-10.22*2.5) {
		t.Errorf("expected uncapped tp3, got %.4f", p.TP3)
	}
}

func TestCalculate_OrderingAndFloor(t *testing.T) {
	levels := []*float64{nil, model.Float(50), model.Float(95), model.Float(99.9), model.Float(100.1), model.Float(105), model.Float(150)}
	atrs := []*float64{nil, model.Float(0.1), model.Float(2), model.Float(10)}
	for _, atr := range atrs {
		for _, sup := range levels {
			for _, res := range levels {
				buy := Calculate(100, model.DirectionBuy, atr, sup, res)
				if !(buy.StopLoss < 100 && 100 < buy.TP1 && buy.TP1 < buy.TP2 && buy.TP2 < buy.TP3) {
					t.Fatalf("buy ordering broken: %+v", buy)
				}
				if buy.StopLoss > 100*0.975+1e-9 {
					t.Fatalf("buy stop closer than 2.5%%: %.4f", buy.StopLoss)
				}
				sell := Calculate(100, model.DirectionSell, atr, sup, res)
				if !(sell.TP3 < sell.TP2 && sell.TP2 < sell.TP1 && sell.TP1 < 100 && 100 < sell.StopLoss) {
					t.Fatalf("sell ordering broken: %+v", sell)
				}
				if sell.StopLoss < 100*1.025-1e-9 {
					t.Fatalf("sell stop closer than 2.5%%: %.4f", sell.StopLoss)
				}
			}
		}
	}
}

func TestCalculate_WideVolatilityKeepsPricesPositive(t *testing.T) {
	tests := []struct {
		name    string
		dir     model.Direction
		atr     float64
		sl, tp3 float64
	}{
		{"buy", model.DirectionBuy, 80, 65, 187.5},
		{"sell", model.DirectionSell, 30, 135, 12.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Calculate(100, tc.dir, model.Float(tc.atr), nil, nil)
			if !approx(p.StopLoss, tc.sl) || !approx(p.TP3, tc.tp3) {
				t.Errorf("got sl=%.4f tp3=%.4f, want %.4f %.4f", p.StopLoss, p.TP3, tc.sl, tc.tp3)
			}
			for _, v := range []float64{p.StopLoss, p.TP1, p.TP2, p.TP3} {
				if v <= 0 {
					t.Errorf("non-positive level in %+v", p)
				}
			}
		})
	}
}

func TestCalculate_PlanShape(t *testing.T) {
	p := Calculate(200, model.DirectionBuy, nil, nil, nil)
	if p.RiskReward != 2.5 || p.Direction != model.DirectionBuy || p.Entry != 200 {
		t.Errorf("unexpected header: %+v", p)
	}
	if !approx(p.StopPct, -2.5) {
		t.Errorf("expected sl_pct -2.5, got %.4f", p.StopPct)
	}
	if len(p.Partials) != 3 {
		t.Fatalf("expected 3 partial exits, got %d", len(p.Partials))
	}
	want := []model.PartialExit{
		{Target: p.TP1, Percent: 25, Action: model.ActionMoveStopToBreakeven},
		{Target: p.TP2, Percent: 50, Action: model.ActionTrailStop},
		{Target: p.TP3, Percent: 25, Action: model.ActionCloseAll},
	}
	for i := range want {
		if p.Partials[i] != want[i] {
			t.Errorf("partial %d = %+v, want %+v", i, p.Partials[i], want[i])
		}
	}
}

func TestCalculate_UnknownDirection(t *testing.T) {
	if p := Calculate(100, model.Direction("HOLD"), nil, nil, nil); p != nil {
		t.Errorf("expected nil plan, got %+v", p)
	}
	if p := Calculate(0, model.DirectionBuy, nil, nil, nil); p != nil {
		t.Errorf("expected nil plan for zero price, got %+v", p)
	}
}
