package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type TradeService struct {
	trades   core.Collection[Trade]
	sector   core.Ref[Sector]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewTradeService(
	trades core.Collection[Trade],
	sectors core.Collection[Sector],
	validate *validator.Validate,
	deps ...core.Dependent,
) *TradeService {
	return &TradeService{
		trades:   trades,
		sector:   core.NewRef(string(FieldSector), sectors),
		validate: validate,
		deps:     deps,
	}
}

func (svc *TradeService) Create(ctx context.Context, nt NewTrade) (TradeView, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return TradeView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.trades, nt.Username, nt.Name)
	if err != nil {
		return TradeView{}, err
	}
	sectorID, err := svc.sector.ResolveID(ctx, nt.Sector)
	if err != nil {
		return TradeView{}, err
	}

	now := time.Now().UTC()
	t, err := core.Insert(ctx, svc.trades, Trade{
		ID:          primitive.NewObjectID(),
		Name:        nt.Name,
		Username:    uname,
		Description: nt.Description,
		Sector:      sectorID,
		ClassRooms:  nt.ClassRooms,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return TradeView{}, err
	}
	return svc.format(ctx, t)
}

func (svc *TradeService) Get(ctx context.Context, id string) (TradeView, error) {
	t, err := core.Fetch(ctx, svc.trades, id)
	if err != nil {
		return TradeView{}, err
	}
	return svc.format(ctx, t)
}

func (svc *TradeService) List(ctx context.Context) ([]TradeView, error) {
	trades, err := svc.trades.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying trades")
	}
	return core.FormatAll(ctx, trades, svc.format)
}

func (svc *TradeService) ListBySector(ctx context.Context, sectorID string) ([]TradeView, error) {
	trades, err := core.ListBy(ctx, svc.trades, FieldSector, svc.sector, sectorID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, trades, svc.format)
}

// Update modifies a trade. Lowering its capacity below the current number of class rooms is
// allowed: the limit only applies to class rooms joining the trade afterwards.
func (svc *TradeService) Update(ctx context.Context, id string, ut UpdateTrade) (TradeView, error) {
	t, err := core.Fetch(ctx, svc.trades, id)
	if err != nil {
		return TradeView{}, err
	}
	if err = ut.Validate(svc.validate); err != nil {
		return TradeView{}, err
	}
	if ut.Username != nil {
		if err = core.ValidateUnique(ctx, svc.trades, core.FieldUsername, *ut.Username, t.ID); err != nil {
			return TradeView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ut.Name).
		SetString(core.FieldUsername, ut.Username).
		SetString(core.FieldDescription, ut.Description)
	if ut.ClassRooms != nil {
		patch.Set(FieldClassRooms, *ut.ClassRooms)
	}
	if _, err = svc.sector.Apply(ctx, patch, FieldSector, ut.Sector); err != nil {
		return TradeView{}, err
	}
	if t, err = core.ApplyPatch(ctx, svc.trades, t.ID, patch); err != nil {
		return TradeView{}, err
	}
	return svc.format(ctx, t)
}

func (svc *TradeService) Delete(ctx context.Context, id string) (TradeView, error) {
	t, err := core.Remove(ctx, svc.trades, id, svc.deps...)
	if err != nil {
		return TradeView{}, err
	}
	return svc.format(ctx, t)
}

func (svc *TradeService) format(ctx context.Context, t Trade) (TradeView, error) {
	sector, err := svc.sector.Name(ctx, &t.Sector)
	if err != nil {
		return TradeView{}, err
	}
	return TradeView{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Username:    t.Username,
		Description: t.Description,
		Sector:      sector,
		ClassRooms:  t.ClassRooms,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}
