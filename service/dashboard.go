package service

import (
	"time"

	"household/models"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const dashboardCacheKey = "dashboard"

// CurrencyTotal 按币种汇总的钱包余额
type CurrencyTotal struct {
	Currency string       `json:"currency"`
	Balance  models.Money `json:"balance"`
	Wallets  int64        `json:"wallets"`
}

// MonthTotals 本月收支
type MonthTotals struct {
	Month   string       `json:"month"`
	Income  models.Money `json:"income"`
	Expense models.Money `json:"expense"`
}

// Dashboard 首页看板数据
type Dashboard struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	ProductCount   int64                `json:"product_count"`
	StuffCount     int64                `json:"stuff_count"`
	Restock        []models.ProductView `json:"restock"`
	Budgets        []models.BudgetView  `json:"budgets"`
	WalletTotals   []CurrencyTotal      `json:"wallet_totals"`
	Month          MonthTotals          `json:"month"`
	ExceededBudget int                  `json:"exceeded_budget"`
}

// DashboardService 看板汇总
// 只缓存数据库汇总结果，缓存按自然月分键；剩余百分比、消耗速率等派生字段每次读取时按 now 计算
type DashboardService struct {
	cache *cache.Cache
}

// dashboardSnapshot 缓存的数据库汇总
type dashboardSnapshot struct {
	productCount int64
	stuffCount   int64
	restock      []models.Product
	budgets      []models.Budget
	walletTotals []CurrencyTotal
	month        MonthTotals
}

// NewDashboardService 创建看板服务
func NewDashboardService(ttl time.Duration) *DashboardService {
	return &DashboardService{cache: cache.New(ttl, 2*ttl)}
}

// Invalidate 清除缓存，nil 接收者为空操作
func (s *DashboardService) Invalidate() {
	if s == nil {
		return
	}
	s.cache.Flush()
}

// Get 读取看板数据，未命中时重新汇总
func (s *DashboardService) Get(db *gorm.DB, now time.Time) (*Dashboard, error) {
	key := dashboardCacheKey + ":" + now.Format("2006-01")
	if v, ok := s.cache.Get(key); ok {
		return v.(*dashboardSnapshot).dashboard(now), nil
	}
	snap, err := loadDashboardSnapshot(db, now)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, snap)
	return snap.dashboard(now), nil
}

// BuildDashboard 汇总看板数据，不经过缓存
func BuildDashboard(db *gorm.DB, now time.Time) (*Dashboard, error) {
	snap, err := loadDashboardSnapshot(db, now)
	if err != nil {
		return nil, err
	}
	return snap.dashboard(now), nil
}

func (snap *dashboardSnapshot) dashboard(now time.Time) *Dashboard {
	d := &Dashboard{
		GeneratedAt:  now,
		ProductCount: snap.productCount,
		StuffCount:   snap.stuffCount,
		Restock:      models.ProductViews(snap.restock, now),
		Budgets:      BudgetViews(snap.budgets),
		WalletTotals: snap.walletTotals,
		Month:        snap.month,
	}
	for _, b := range d.Budgets {
		if b.Status == models.BudgetStatusExceeded {
			d.ExceededBudget++
		}
	}
	return d
}

func loadDashboardSnapshot(db *gorm.DB, now time.Time) (*dashboardSnapshot, error) {
	snap := &dashboardSnapshot{}

	if err := db.Model(&models.Product{}).Where("is_active = ?", true).Count(&snap.productCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Stuff{}).Count(&snap.stuffCount).Error; err != nil {
		return nil, err
	}

	restock, err := RestockProducts(db)
	if err != nil {
		return nil, err
	}
	snap.restock = restock

	var budgets []models.Budget
	if err := db.Where("is_active = ?", true).Order("name ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	if err := LoadBudgetSpent(db, budgets); err != nil {
		return nil, err
	}
	snap.budgets = budgets

	var totals []struct {
		Currency string
		Balance  int64
		Wallets  int64
	}
	if err := db.Model(&models.Wallet{}).
		Select("currency, COALESCE(SUM(balance), 0) AS balance, COUNT(*) AS wallets").
		Where("is_active = ?", true).
		Group("currency").
		Order("currency ASC").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	snap.walletTotals = make([]CurrencyTotal, 0, len(totals))
	for _, t := range totals {
		snap.walletTotals = append(snap.walletTotals, CurrencyTotal{
			Currency: t.Currency,
			Balance:  models.Money(t.Balance),
			Wallets:  t.Wallets,
		})
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	var sums []struct {
		Type  models.TransactionType
		Total int64
	}
	if err := db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("transaction_date >= ? AND transaction_date < ? AND type IN ?",
			start, end, []models.TransactionType{models.TransactionIncome, models.TransactionExpense}).
		Group("type").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	snap.month.Month = start.Format("2006-01")
	for _, s := range sums {
		switch s.Type {
		case models.TransactionIncome:
			snap.month.Income = models.Money(s.Total)
		case models.TransactionExpense:
			snap.month.Expense = models.Money(s.Total)
		}
	}

	return snap, nil
}

// RestockProducts 需要补货的在用商品：current_amount <= threshold_amount
func RestockProducts(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	err := db.Where("is_active = ? AND current_amount <= threshold_amount", true).
		Order("name ASC").
		Find(&products).Error
	return products, err
}
