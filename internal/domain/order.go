package domain

import (
	"fmt"
	"strings"
)

// Instruction is the normalized trade direction.
type Instruction string

const (
	InstructionBuy  Instruction = "BUY"
	InstructionSell Instruction = "SELL"
)

// OrderIntent describes a single market order to submit.
type OrderIntent struct {
	Symbol      string
	Quantity    int
	Instruction Instruction
}

// Normalize uppercases the symbol and instruction and validates the intent.
func (o OrderIntent) Normalize() (OrderIntent, error) {
	symbol := strings.ToUpper(strings.TrimSpace(o.Symbol))
	instruction := Instruction(strings.ToUpper(strings.TrimSpace(string(o.Instruction))))

	var missing []string
	if symbol == "" {
		missing = append(missing, "symbol")
	}
	if o.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if instruction == "" {
		missing = append(missing, "instruction")
	}
	if len(missing) > 0 {
		return OrderIntent{}, &ValidationError{Missing: missing}
	}
	if instruction != InstructionBuy && instruction != InstructionSell {
		return OrderIntent{}, &InvalidActionError{Received: string(o.Instruction)}
	}

	return OrderIntent{Symbol: symbol, Quantity: o.Quantity, Instruction: instruction}, nil
}

// Alert is the inbound TradingView alert payload.
type Alert struct {
	Ticker   string  `json:"ticker"`
	Action   string  `json:"action"`
	Quantity float64 `json:"quantity"`
	Strategy string  `json:"strategy"`
}

// DefaultStrategy is echoed back when the alert carries no strategy label.
const DefaultStrategy = "N/A"

// TranslateAlert maps an alert into an order intent. The action verb is
// matched case-insensitively: buy/long place a BUY, sell/short a SELL.
// Quantity defaults to one share when absent; a negative quantity is
// rejected rather than coerced into an order the alert never described.
func TranslateAlert(a Alert) (OrderIntent, error) {
	var missing []string
	if strings.TrimSpace(a.Ticker) == "" {
		missing = append(missing, "ticker")
	}
	if strings.TrimSpace(a.Action) == "" {
		missing = append(missing, "action")
	}
	if len(missing) > 0 {
		return OrderIntent{}, &ValidationError{Missing: missing}
	}

	var instruction Instruction
	switch strings.ToLower(strings.TrimSpace(a.Action)) {
	case "buy", "long":
		instruction = InstructionBuy
	case "sell", "short":
		instruction = InstructionSell
	default:
		return OrderIntent{}, &InvalidActionError{Received: a.Action}
	}

	if a.Quantity < 0 {
		return OrderIntent{}, &InvalidQuantityError{Received: a.Quantity}
	}
	quantity := int(a.Quantity)
	if quantity == 0 {
		quantity = 1
	}

	return OrderIntent{
		Symbol:      strings.ToUpper(strings.TrimSpace(a.Ticker)),
		Quantity:    quantity,
		Instruction: instruction,
	}, nil
}

// StrategyLabel returns the strategy for response echoes.
func (a Alert) StrategyLabel() string {
	if strings.TrimSpace(a.Strategy) == "" {
		return DefaultStrategy
	}
	return a.Strategy
}

func (o OrderIntent) String() string {
	return fmt.Sprintf("%s %d %s", o.Instruction, o.Quantity, o.Symbol)
}
