// Package usecase は日次レポート生成のビジネスロジックを実装します。
package usecase

import (
	"errors"
	"fmt"
	"math"

	"invest_bot/internal/domain/entity"
)

const (
	// MinBars は分析に必要な最小バー数です（最短ウィンドウが値を出せる長さ）。
	MinBars = 20

	// RSI 期間（暗号資産はより敏感な設定）
	RSIPeriodStock  = 14
	RSIPeriodCrypto = 6

	// RSI 閾値
	RSIOverbought = 75.0
	RSIOversold   = 30.0

	// 株式の EMA ウィンドウ
	EMAStockFast = 20
	EMAStockMid  = 60
	EMAStockSlow = 120

	// 暗号資産の短期 EMA ウィンドウ
	EMACryptoFast = 5
	EMACryptoMid  = 10
	EMACryptoSlow = 20
	// EMACryptoTrend は十分な履歴がある場合のトレンド基準ウィンドウです。
	EMACryptoTrend = 60

	// MACD パラメータ
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	// ボリンジャーバンド
	BBWindow = 20
	BBStdDev = 2.0
)

// ErrInsufficientData は履歴が MinBars 未満で分析できないことを示します。
// 取得失敗とは区別される定義済みの「結果なし」です。
var ErrInsufficientData = errors.New("insufficient history for analysis")

// AnalysisUsecase は価格系列からテクニカル指標シグナルを計算します。
// 状態を持たない純粋な計算で、I/O は行いません。
type AnalysisUsecase struct{}

// NewAnalysisUsecase はAnalysisUsecaseの新しいインスタンスを生成します。
func NewAnalysisUsecase() *AnalysisUsecase {
	return &AnalysisUsecase{}
}

// Analyze は日足系列と資産クラスからシグナルを計算します。
// 数値はすべて出力時に小数第2位へ丸めます（中間計算では丸めません）。
// 計算中のパニックは回収してエラーとして返し、決して伝播させません。
func (au *AnalysisUsecase) Analyze(candles []entity.Candle, assetType entity.AssetType) (sig *entity.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig = nil
			err = fmt.Errorf("analysis failed: %v", r)
		}
	}()

	if len(candles) < MinBars {
		return nil, ErrInsufficientData
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	n := len(closes)
	price := closes[n-1]

	// 1. RSI（Wilder 平滑化）
	rsiPeriod := RSIPeriodStock
	if assetType == entity.AssetTypeCrypto {
		rsiPeriod = RSIPeriodCrypto
	}
	rsiVal := wilderRSI(closes, rsiPeriod)

	// 2. EMA セット（履歴が短い場合は短いウィンドウへフォールバック）
	var emaFast, emaMid, emaSlow, trendRef float64
	if assetType == entity.AssetTypeCrypto {
		emaFast = lastEMA(closes, EMACryptoFast)
		emaMid = lastEMA(closes, EMACryptoMid)
		emaSlow = lastEMA(closes, EMACryptoSlow)
		if n >= EMACryptoTrend {
			trendRef = lastEMA(closes, EMACryptoTrend)
		} else {
			trendRef = emaSlow
		}
	} else {
		emaFast = lastEMA(closes, EMAStockFast)
		if n >= EMAStockMid {
			emaMid = lastEMA(closes, EMAStockMid)
			trendRef = emaMid
		} else {
			emaMid = emaFast
			trendRef = emaFast
		}
		if n >= EMAStockSlow {
			emaSlow = lastEMA(closes, EMAStockSlow)
		} else {
			emaSlow = emaMid
		}
	}

	// 3. MACD
	macdLine, macdSig, macdHist := macdValues(closes, MACDFast, MACDSlow, MACDSignal)

	// 4. ボリンジャーバンド
	basis := smaLast(closes, BBWindow)
	dev := stddevLast(closes, BBWindow)
	bbUpper := basis + BBStdDev*dev
	bbLower := basis - BBStdDev*dev
	pctB := 0.0
	if width := bbUpper - bbLower; width != 0 {
		pctB = (price - bbLower) / width
	}

	// 5. トレンド判定（基準 EMA を上回る場合のみ Bullish、同値は Bearish）
	trend := entity.TrendBearish
	if price > trendRef {
		trend = entity.TrendBullish
	}

	return &entity.Signal{
		AssetType:    assetType,
		Date:         entity.LastBarDate(candles),
		CurrentPrice: round2(price),
		RSI:          round2(rsiVal),
		IsOverbought: rsiVal > RSIOverbought,
		IsOversold:   rsiVal < RSIOversold,
		Trend:        trend,
		EMAFast:      round2(emaFast),
		EMAMid:       round2(emaMid),
		EMASlow:      round2(emaSlow),
		MACDLine:     round2(macdLine),
		MACDSignal:   round2(macdSig),
		MACDHist:     round2(macdHist),
		BBUpper:      round2(bbUpper),
		BBLower:      round2(bbLower),
		BBPctB:       round2(pctB),
	}, nil
}

// emaSeries は先頭値をシードとする再帰 EMA（alpha = 2/(n+1)）を返します。
func emaSeries(values []float64, window int) []float64 {
	alpha := 2.0 / (float64(window) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1.0-alpha)*out[i-1]
	}
	return out
}

func lastEMA(values []float64, window int) float64 {
	s := emaSeries(values, window)
	return s[len(s)-1]
}

// wilderRSI は Wilder 平滑化による RSI を計算します。最初の平均は先頭
// period 本の変化の単純平均、それ以降は (prev*(period-1)+change)/period。
// 損失平均が 0 の場合は 100、完全にフラットな系列は中立の 50 を返します。
func wilderRSI(closes []float64, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macdValues は MACD ライン・シグナル・ヒストグラムの最新値を返します。
func macdValues(closes []float64, fast, slow, signal int) (line, sig, hist float64) {
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)
	diff := make([]float64, len(closes))
	for i := range closes {
		diff[i] = fastEMA[i] - slowEMA[i]
	}
	sigEMA := emaSeries(diff, signal)

	last := len(closes) - 1
	return diff[last], sigEMA[last], diff[last] - sigEMA[last]
}

// smaLast は末尾 window 本の単純移動平均です。
func smaLast(values []float64, window int) float64 {
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// stddevLast は末尾 window 本の母標準偏差（ddof=0）です。
func stddevLast(values []float64, window int) float64 {
	mean := smaLast(values, window)
	var ss float64
	for _, v := range values[len(values)-window:] {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(window))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
