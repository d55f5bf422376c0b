package pricing

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cinema-tickets/internal/model"
	apperrors "cinema-tickets/pkg/app_errors"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	OptionInfantPrice = "INFANT_PRICE"
	OptionChildPrice  = "CHILD_PRICE"
	OptionAdultPrice  = "ADULT_PRICE"

	DefaultInfantPrice   int64 = 0
	DefaultChildPrice    int64 = 15
	DefaultAdultPrice    int64 = 25
	DefaultPurchaseLimit       = 25
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// settings 建構期間的可變設定，完成後轉為唯讀的 PriceConfig
type settings struct {
	InfantPrice   int64 `validate:"gte=0"`
	ChildPrice    int64 `validate:"gte=0"`
	AdultPrice    int64 `validate:"gte=0"`
	PurchaseLimit int   `validate:"gte=0"`
}

func defaultSettings() settings {
	return settings{
		InfantPrice:   DefaultInfantPrice,
		ChildPrice:    DefaultChildPrice,
		AdultPrice:    DefaultAdultPrice,
		PurchaseLimit: DefaultPurchaseLimit,
	}
}

// PriceConfig 票價與單次購票上限。建立後不可修改，可在多個 goroutine 間共用
type PriceConfig struct {
	prices        map[model.TicketType]int64
	purchaseLimit int
	options       map[string]string
}

type Option func(*settings)

// WithPrice 設定票種單價
func WithPrice(t model.TicketType, price int64) Option {
	return func(s *settings) {
		switch t {
		case model.TicketTypeAdult:
			s.AdultPrice = price
		case model.TicketTypeChild:
			s.ChildPrice = price
		case model.TicketTypeInfant:
			s.InfantPrice = price
		}
	}
}

// WithPurchaseLimit 設定單次購票張數上限
func WithPurchaseLimit(limit int) Option {
	return func(s *settings) {
		s.PurchaseLimit = limit
	}
}

// DefaultConfig INFANT=0, CHILD=15, ADULT=25, 上限 25 張
func DefaultConfig() *PriceConfig {
	return newPriceConfig(defaultSettings(), nil)
}

// NewConfig 以預設值為基礎套用 options，負數價格或上限回傳 ConfigError
func NewConfig(opts ...Option) (*PriceConfig, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := validate.Struct(s); err != nil {
		return nil, &apperrors.ConfigError{Err: err}
	}
	return newPriceConfig(s, nil), nil
}

// LoadConfig 讀取 KEY=VALUE 格式的設定檔。未設定的票價使用預設值，購票上限固定為預設值。
// 票價必須是純整數字面值，不接受 ${VAR} 展開或行尾註解
func LoadConfig(path string) (*PriceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.ConfigError{Path: path, Err: err}
	}

	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &apperrors.ConfigError{Path: path, Err: err}
	}
	literals := rawValues(data)

	s := defaultSettings()
	fields := []struct {
		key  string
		dest *int64
	}{
		{OptionInfantPrice, &s.InfantPrice},
		{OptionChildPrice, &s.ChildPrice},
		{OptionAdultPrice, &s.AdultPrice},
	}
	for _, f := range fields {
		if _, ok := values[f.key]; !ok {
			continue
		}
		// godotenv 會展開變數並去掉註解，票價改用檔案中的原始文字解析
		price, err := strconv.ParseInt(literals[f.key], 10, 64)
		if err != nil {
			return nil, &apperrors.ConfigError{Path: path, Err: fmt.Errorf("%s: %w", f.key, err)}
		}
		*f.dest = price
	}

	if err := validate.Struct(s); err != nil {
		return nil, &apperrors.ConfigError{Path: path, Err: err}
	}

	return newPriceConfig(s, values), nil
}

// rawValues 每個 key 最後一次賦值的原始文字 (去除前後空白)
func rawValues(data []byte) map[string]string {
	raw := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.IndexAny(line, "=:")
		if i < 0 {
			continue
		}
		raw[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
	}
	return raw
}

func newPriceConfig(s settings, options map[string]string) *PriceConfig {
	return &PriceConfig{
		prices: map[model.TicketType]int64{
			model.TicketTypeInfant: s.InfantPrice,
			model.TicketTypeChild:  s.ChildPrice,
			model.TicketTypeAdult:  s.AdultPrice,
		},
		purchaseLimit: s.PurchaseLimit,
		options:       options,
	}
}

// Price 回傳票種單價，未設定時為 0
func (c *PriceConfig) Price(t model.TicketType) int64 {
	return c.prices[t]
}

func (c *PriceConfig) PurchaseLimit() int {
	return c.purchaseLimit
}

// Option 讀取設定檔中的任意 key；未載入設定檔或 key 不存在時 ok 為 false
func (c *PriceConfig) Option(key string) (string, bool) {
	if c.options == nil {
		return "", false
	}
	v, ok := c.options[key]
	return v, ok
}
