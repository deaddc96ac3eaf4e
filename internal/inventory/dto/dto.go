package dto

type Op int

const (
	SetStock Op = iota
	AddStock
	ReduceStock
)

func (o Op) String() string {
	switch o {
	case AddStock:
		return "add"
	case ReduceStock:
		return "reduce"
	default:
		return "update"
	}
}

// Adjustment is one stock change applied to a single product row.
type Adjustment struct {
	ProductID int64
	Op        Op
	Quantity  int
}

// Level is the stock state of a product.
type Level struct {
	ProductID         int64 `db:"id"`
	StockQuantity     int   `db:"stock_quantity"`
	LowStockThreshold int   `db:"low_stock_threshold"`
	TrackInventory    bool  `db:"track_inventory"`
}
