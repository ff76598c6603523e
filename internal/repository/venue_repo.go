package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
)

// VenueRepository 场地数据访问接口
type VenueRepository interface {
	Create(ctx context.Context, venue *model.Venue) error
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	List(ctx context.Context) ([]model.Venue, error)
	// ListByIDs 按 id 集合查询，结果保持入参顺序（分配策略依赖场地顺序）
	ListByIDs(ctx context.Context, ids []string) ([]model.Venue, error)

	// ── 教学楼 ──
	CreateBuilding(ctx context.Context, building *model.Building) error
	ListBuildings(ctx context.Context) ([]model.Building, error)
}

type venueRepo struct {
	db *gorm.DB
}

func NewVenueRepo(db *gorm.DB) VenueRepository {
	return &venueRepo{db: db}
}

func (r *venueRepo) Create(ctx context.Context, venue *model.Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *venueRepo) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	var venue model.Venue
	err := r.db.WithContext(ctx).
		Preload("Building").
		Where("venue_id = ?", id).
		First(&venue).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepo) List(ctx context.Context) ([]model.Venue, error) {
	var venues []model.Venue
	err := r.db.WithContext(ctx).
		Preload("Building").
		Order("name ASC").
		Find(&venues).Error
	return venues, err
}

func (r *venueRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var venues []model.Venue
	err := r.db.WithContext(ctx).
		Preload("Building").
		Where("venue_id IN ?", ids).
		Find(&venues).Error
	if err != nil {
		return nil, err
	}

	// 数据库不保证 IN 查询的返回顺序，按入参顺序重排
	byID := make(map[string]model.Venue, len(venues))
	for _, v := range venues {
		byID[v.VenueID] = v
	}
	ordered := make([]model.Venue, 0, len(venues))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

func (r *venueRepo) CreateBuilding(ctx context.Context, building *model.Building) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *venueRepo) ListBuildings(ctx context.Context) ([]model.Building, error) {
	var buildings []model.Building
	err := r.db.WithContext(ctx).
		Preload("Venues").
		Order("name ASC").
		Find(&buildings).Error
	return buildings, err
}
