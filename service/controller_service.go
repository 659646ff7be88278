package service

import (
	"context"
	"math/big"
	"strconv"

	"github.com/gaugesuite/emission-gauge-server/constdef"
	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"gorm.io/gorm"
)

// ControllerService maintains the gauge type registry and the four
// piecewise-constant weight series: per-gauge weights, per-type sums of
// gauge weights, per-type weights and the global total. Weight changes
// become effective at the next epoch boundary; reads between points carry
// the last stored value forward.
type ControllerService interface {
	AddType(ctx context.Context, tx *gorm.DB, name string, weight *big.Int, now int64) (int64, error)
	ChangeTypeWeight(ctx context.Context, tx *gorm.DB, typeID int64, weight *big.Int, now int64) error
	AddGauge(ctx context.Context, tx *gorm.DB, gaugeID string, typeID int64, weight *big.Int, now int64) error
	ChangeGaugeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, weight *big.Int, now int64) error

	// CheckpointGauge fills every weight series the gauge depends on up to
	// the epoch containing now and returns the gauge's relative weight at
	// that epoch.
	CheckpointGauge(ctx context.Context, tx *gorm.DB, gaugeID string, now int64) (*big.Int, error)

	// GaugeRelativeWeight is the read-only form: 1e18-scaled share of the
	// global emission directed at the gauge during the epoch containing t.
	GaugeRelativeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, t int64) (*big.Int, error)

	GetGaugeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, t int64) (*big.Int, error)
	GetTypeWeight(ctx context.Context, tx *gorm.DB, typeID int64, t int64) (*big.Int, error)
	GetTotalWeight(ctx context.Context, tx *gorm.DB, t int64) (*big.Int, error)

	GetGauge(ctx context.Context, tx *gorm.DB, gaugeID string) (*do.GaugeInfo, error)
	GetGauges(ctx context.Context, tx *gorm.DB) ([]*do.GaugeInfo, error)
	GetTypes(ctx context.Context, tx *gorm.DB) ([]*do.GaugeTypeInfo, error)
}

type ControllerServiceImpl struct {
	clock *epochclock.Clock

	metaDAO     dao.ControllerMetaInfoDAO
	typeDAO     dao.GaugeTypeInfoDAO
	gaugeDAO    dao.GaugeInfoDAO
	pointDAO    dao.WeightPointInfoDAO
	checkpntDAO dao.GaugeCheckpointInfoDAO
}

func NewControllerService(clock *epochclock.Clock) *ControllerServiceImpl {
	return &ControllerServiceImpl{
		clock:       clock,
		metaDAO:     dao.GetControllerMetaInfoDAOImpl(),
		typeDAO:     dao.GetGaugeTypeInfoDAOImpl(),
		gaugeDAO:    dao.GetGaugeInfoDAOImpl(),
		pointDAO:    dao.GetWeightPointInfoDAOImpl(),
		checkpntDAO: dao.GetGaugeCheckpointInfoDAOImpl(),
	}
}

func typeRef(typeID int64) string {
	return strconv.FormatInt(typeID, 10)
}

// valueAt reads a series at an epoch boundary, carrying the most recent
// stored point forward. Series with no point at or before the epoch read
// as zero.
func (s *ControllerServiceImpl) valueAt(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64) (*big.Int, error) {
	pt, err := s.pointDAO.GetLatestAtOrBefore(ctx, tx, kind, ref, epoch)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return new(big.Int), nil
	}
	return utils.ParseAmount(pt.Weight)
}

func (s *ControllerServiceImpl) writePoint(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64, weight *big.Int) error {
	return s.pointDAO.Upsert(ctx, tx, &do.WeightPointInfo{
		Kind:   kind,
		Ref:    ref,
		Epoch:  epoch,
		Weight: utils.FormatAmount(weight),
	})
}

// fillSeries materializes one point per epoch boundary in (last, target] by
// carrying the running value forward. Already-stored points, including
// scheduled future changes, take precedence over the carried value. Returns
// the new high-water epoch.
func (s *ControllerServiceImpl) fillSeries(ctx context.Context, tx *gorm.DB, kind int, ref string, last int64, target int64) (int64, error) {
	if last == 0 || target <= last {
		if target > last {
			return target, nil
		}
		return last, nil
	}

	w, err := s.valueAt(ctx, tx, kind, ref, last)
	if err != nil {
		return 0, err
	}

	epochLen := s.clock.EpochLength()
	t := last
	for i := 0; i < constdef.MaxCheckpointEpochs && t < target; i++ {
		t += epochLen
		pt, err := s.pointDAO.Get(ctx, tx, kind, ref, t)
		if err != nil {
			return 0, err
		}
		if pt != nil {
			w, err = utils.ParseAmount(pt.Weight)
			if err != nil {
				return 0, err
			}
			continue
		}
		if err := s.writePoint(ctx, tx, kind, ref, t, w); err != nil {
			return 0, err
		}
	}
	if t > last {
		last = t
	}
	return last, nil
}

// fillTotal fills every type weight and type sum series to target, then
// recomputes the global total point by point. The total series stores
// sum(type_sum * type_weight) without rescaling, so reads divide it back
// out against the 1e18-scaled factors.
func (s *ControllerServiceImpl) fillTotal(ctx context.Context, tx *gorm.DB, meta *do.ControllerMetaInfo, target int64) error {
	types, err := s.typeDAO.GetAll(ctx, tx)
	if err != nil {
		return err
	}
	for _, ti := range types {
		newLast, err := s.fillSeries(ctx, tx, constdef.WeightKindType, typeRef(ti.TypeID), ti.LastEpoch, target)
		if err != nil {
			return err
		}
		if newLast != ti.LastEpoch {
			if err := s.typeDAO.UpdateLastEpoch(ctx, tx, ti.TypeID, newLast); err != nil {
				return err
			}
		}
		newSumLast, err := s.fillSeries(ctx, tx, constdef.WeightKindTypeSum, typeRef(ti.TypeID), ti.SumLastEpoch, target)
		if err != nil {
			return err
		}
		if newSumLast != ti.SumLastEpoch {
			if err := s.typeDAO.UpdateSumLastEpoch(ctx, tx, ti.TypeID, newSumLast); err != nil {
				return err
			}
		}
	}

	last := meta.TotalLastEpoch
	if last == 0 {
		return nil
	}

	epochLen := s.clock.EpochLength()
	t := last
	for i := 0; i < constdef.MaxCheckpointEpochs && t < target; i++ {
		t += epochLen
		total := new(big.Int)
		for _, ti := range types {
			tw, err := s.valueAt(ctx, tx, constdef.WeightKindType, typeRef(ti.TypeID), t)
			if err != nil {
				return err
			}
			sum, err := s.valueAt(ctx, tx, constdef.WeightKindTypeSum, typeRef(ti.TypeID), t)
			if err != nil {
				return err
			}
			total.Add(total, new(big.Int).Mul(tw, sum))
		}
		if err := s.writePoint(ctx, tx, constdef.WeightKindTotal, "", t, total); err != nil {
			return err
		}
	}
	if t > meta.TotalLastEpoch {
		meta.TotalLastEpoch = t
		return s.metaDAO.Update(ctx, tx, meta)
	}
	return nil
}

// recomputeTotalAt rewrites the total point at the given epoch from the
// current sum and type weight series. Used after a change schedules new
// points at the next epoch boundary.
func (s *ControllerServiceImpl) recomputeTotalAt(ctx context.Context, tx *gorm.DB, epoch int64) error {
	types, err := s.typeDAO.GetAll(ctx, tx)
	if err != nil {
		return err
	}
	total := new(big.Int)
	for _, ti := range types {
		tw, err := s.valueAt(ctx, tx, constdef.WeightKindType, typeRef(ti.TypeID), epoch)
		if err != nil {
			return err
		}
		sum, err := s.valueAt(ctx, tx, constdef.WeightKindTypeSum, typeRef(ti.TypeID), epoch)
		if err != nil {
			return err
		}
		total.Add(total, new(big.Int).Mul(tw, sum))
	}
	return s.writePoint(ctx, tx, constdef.WeightKindTotal, "", epoch, total)
}

func (s *ControllerServiceImpl) AddType(ctx context.Context, tx *gorm.DB, name string, weight *big.Int, now int64) (int64, error) {
	if err := utils.CheckTypeNameValidity(name); err != nil {
		return 0, err
	}
	if weight == nil {
		weight = new(big.Int)
	}

	meta, err := s.metaDAO.Get(ctx, tx, true)
	if err != nil {
		return 0, err
	}
	if meta == nil {
		meta = &do.ControllerMetaInfo{}
		if err := s.metaDAO.Create(ctx, tx, meta); err != nil {
			return 0, err
		}
	}

	nextEpoch := s.clock.NextEpoch(now)
	if err := s.fillTotal(ctx, tx, meta, s.clock.EpochStart(now)); err != nil {
		return 0, err
	}

	typeID := meta.TypeCount
	info := &do.GaugeTypeInfo{
		TypeID:       typeID,
		Name:         name,
		LastEpoch:    nextEpoch,
		SumLastEpoch: nextEpoch,
	}
	if err := s.typeDAO.Create(ctx, tx, info); err != nil {
		return 0, err
	}

	if err := s.writePoint(ctx, tx, constdef.WeightKindType, typeRef(typeID), nextEpoch, weight); err != nil {
		return 0, err
	}
	if err := s.writePoint(ctx, tx, constdef.WeightKindTypeSum, typeRef(typeID), nextEpoch, new(big.Int)); err != nil {
		return 0, err
	}
	if err := s.recomputeTotalAt(ctx, tx, nextEpoch); err != nil {
		return 0, err
	}

	meta.TypeCount++
	if nextEpoch > meta.TotalLastEpoch {
		meta.TotalLastEpoch = nextEpoch
	}
	if err := s.metaDAO.Update(ctx, tx, meta); err != nil {
		return 0, err
	}

	log.Debugf("added gauge type %v (%v) with weight %v effective %v",
		typeID, name, utils.FormatAmount(weight), nextEpoch)
	return typeID, nil
}

func (s *ControllerServiceImpl) ChangeTypeWeight(ctx context.Context, tx *gorm.DB, typeID int64, weight *big.Int, now int64) error {
	if weight == nil {
		weight = new(big.Int)
	}
	info, err := s.typeDAO.GetByTypeID(ctx, tx, typeID, true)
	if err != nil {
		return err
	}
	if info == nil {
		return errcode.ErrUnknownType
	}
	meta, err := s.metaDAO.Get(ctx, tx, true)
	if err != nil {
		return err
	}
	if meta == nil {
		return errcode.ErrUnknownType
	}

	epoch := s.clock.EpochStart(now)
	nextEpoch := epoch + s.clock.EpochLength()

	if err := s.fillTotal(ctx, tx, meta, epoch); err != nil {
		return err
	}
	newLast, err := s.fillSeries(ctx, tx, constdef.WeightKindType, typeRef(typeID), info.LastEpoch, epoch)
	if err != nil {
		return err
	}

	if err := s.writePoint(ctx, tx, constdef.WeightKindType, typeRef(typeID), nextEpoch, weight); err != nil {
		return err
	}
	if err := s.recomputeTotalAt(ctx, tx, nextEpoch); err != nil {
		return err
	}

	if nextEpoch > newLast {
		newLast = nextEpoch
	}
	if newLast != info.LastEpoch {
		if err := s.typeDAO.UpdateLastEpoch(ctx, tx, typeID, newLast); err != nil {
			return err
		}
	}
	if nextEpoch > meta.TotalLastEpoch {
		meta.TotalLastEpoch = nextEpoch
	}
	if err := s.metaDAO.Update(ctx, tx, meta); err != nil {
		return err
	}

	log.Debugf("type %v weight set to %v effective %v", typeID, utils.FormatAmount(weight), nextEpoch)
	return nil
}

func (s *ControllerServiceImpl) AddGauge(ctx context.Context, tx *gorm.DB, gaugeID string, typeID int64, weight *big.Int, now int64) error {
	if err := utils.CheckGaugeIDValidity(gaugeID); err != nil {
		return err
	}
	if weight == nil {
		weight = new(big.Int)
	}

	typeInfo, err := s.typeDAO.GetByTypeID(ctx, tx, typeID, true)
	if err != nil {
		return err
	}
	if typeInfo == nil {
		return errcode.ErrUnknownType
	}
	exist, err := s.gaugeDAO.ExistGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return err
	}
	if exist {
		return errcode.ErrAlreadyExists
	}
	meta, err := s.metaDAO.Get(ctx, tx, true)
	if err != nil {
		return err
	}
	if meta == nil {
		return errcode.ErrUnknownType
	}

	epoch := s.clock.EpochStart(now)
	nextEpoch := epoch + s.clock.EpochLength()

	if err := s.fillTotal(ctx, tx, meta, epoch); err != nil {
		return err
	}

	if err := s.gaugeDAO.Create(ctx, tx, &do.GaugeInfo{
		GaugeID:   gaugeID,
		TypeID:    typeID,
		LastEpoch: nextEpoch,
	}); err != nil {
		return err
	}
	if err := s.checkpntDAO.Create(ctx, tx, &do.GaugeCheckpointInfo{
		GaugeID:            gaugeID,
		CheckpointTime:     now,
		IntegrateInvSupply: "0",
		TotalStaked:        "0",
	}); err != nil {
		return err
	}

	if err := s.writePoint(ctx, tx, constdef.WeightKindGauge, gaugeID, nextEpoch, weight); err != nil {
		return err
	}

	if weight.Sign() > 0 {
		// Re-read the type row: fillTotal may have advanced its epochs.
		typeInfo, err = s.typeDAO.GetByTypeID(ctx, tx, typeID)
		if err != nil {
			return err
		}
		oldSum, err := s.valueAt(ctx, tx, constdef.WeightKindTypeSum, typeRef(typeID), nextEpoch)
		if err != nil {
			return err
		}
		newSum := new(big.Int).Add(oldSum, weight)
		if err := s.writePoint(ctx, tx, constdef.WeightKindTypeSum, typeRef(typeID), nextEpoch, newSum); err != nil {
			return err
		}
		if nextEpoch > typeInfo.SumLastEpoch {
			if err := s.typeDAO.UpdateSumLastEpoch(ctx, tx, typeID, nextEpoch); err != nil {
				return err
			}
		}
		if err := s.recomputeTotalAt(ctx, tx, nextEpoch); err != nil {
			return err
		}
		if nextEpoch > meta.TotalLastEpoch {
			meta.TotalLastEpoch = nextEpoch
		}
		if err := s.metaDAO.Update(ctx, tx, meta); err != nil {
			return err
		}
	}

	log.Infof("added gauge %v type %v weight %v effective %v",
		gaugeID, typeID, utils.FormatAmount(weight), nextEpoch)
	return nil
}

func (s *ControllerServiceImpl) ChangeGaugeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, weight *big.Int, now int64) error {
	if weight == nil {
		weight = new(big.Int)
	}
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID, true)
	if err != nil {
		return err
	}
	if gauge == nil {
		return errcode.ErrNotAGauge
	}
	typeInfo, err := s.typeDAO.GetByTypeID(ctx, tx, gauge.TypeID, true)
	if err != nil {
		return err
	}
	if typeInfo == nil {
		return errcode.ErrUnknownType
	}
	meta, err := s.metaDAO.Get(ctx, tx, true)
	if err != nil {
		return err
	}
	if meta == nil {
		return errcode.ErrUnknownType
	}

	epoch := s.clock.EpochStart(now)
	nextEpoch := epoch + s.clock.EpochLength()

	if err := s.fillTotal(ctx, tx, meta, epoch); err != nil {
		return err
	}
	gaugeLast, err := s.fillSeries(ctx, tx, constdef.WeightKindGauge, gaugeID, gauge.LastEpoch, epoch)
	if err != nil {
		return err
	}

	oldWeight, err := s.valueAt(ctx, tx, constdef.WeightKindGauge, gaugeID, nextEpoch)
	if err != nil {
		return err
	}
	oldSum, err := s.valueAt(ctx, tx, constdef.WeightKindTypeSum, typeRef(gauge.TypeID), nextEpoch)
	if err != nil {
		return err
	}

	newSum := new(big.Int).Add(oldSum, weight)
	newSum.Sub(newSum, oldWeight)
	if newSum.Sign() < 0 {
		newSum.SetInt64(0)
	}

	if err := s.writePoint(ctx, tx, constdef.WeightKindGauge, gaugeID, nextEpoch, weight); err != nil {
		return err
	}
	if err := s.writePoint(ctx, tx, constdef.WeightKindTypeSum, typeRef(gauge.TypeID), nextEpoch, newSum); err != nil {
		return err
	}
	if err := s.recomputeTotalAt(ctx, tx, nextEpoch); err != nil {
		return err
	}

	if nextEpoch > gaugeLast {
		gaugeLast = nextEpoch
	}
	if gaugeLast != gauge.LastEpoch {
		if err := s.gaugeDAO.UpdateLastEpoch(ctx, tx, gaugeID, gaugeLast); err != nil {
			return err
		}
	}
	typeInfo, err = s.typeDAO.GetByTypeID(ctx, tx, gauge.TypeID)
	if err != nil {
		return err
	}
	if nextEpoch > typeInfo.SumLastEpoch {
		if err := s.typeDAO.UpdateSumLastEpoch(ctx, tx, gauge.TypeID, nextEpoch); err != nil {
			return err
		}
	}
	if nextEpoch > meta.TotalLastEpoch {
		meta.TotalLastEpoch = nextEpoch
	}
	if err := s.metaDAO.Update(ctx, tx, meta); err != nil {
		return err
	}

	log.Debugf("gauge %v weight set to %v effective %v", gaugeID, utils.FormatAmount(weight), nextEpoch)
	return nil
}

func (s *ControllerServiceImpl) CheckpointGauge(ctx context.Context, tx *gorm.DB, gaugeID string, now int64) (*big.Int, error) {
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID, true)
	if err != nil {
		return nil, err
	}
	if gauge == nil {
		return nil, errcode.ErrNotAGauge
	}
	meta, err := s.metaDAO.Get(ctx, tx, true)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return new(big.Int), nil
	}

	epoch := s.clock.EpochStart(now)
	if err := s.fillTotal(ctx, tx, meta, epoch); err != nil {
		return nil, err
	}
	newLast, err := s.fillSeries(ctx, tx, constdef.WeightKindGauge, gaugeID, gauge.LastEpoch, epoch)
	if err != nil {
		return nil, err
	}
	if newLast != gauge.LastEpoch {
		if err := s.gaugeDAO.UpdateLastEpoch(ctx, tx, gaugeID, newLast); err != nil {
			return nil, err
		}
	}

	return s.relativeWeightAt(ctx, tx, gauge, epoch)
}

// relativeWeightAt computes 1e18 * type_weight * gauge_weight / total at an
// epoch boundary. Zero when the total is zero.
func (s *ControllerServiceImpl) relativeWeightAt(ctx context.Context, tx *gorm.DB, gauge *do.GaugeInfo, epoch int64) (*big.Int, error) {
	total, err := s.valueAt(ctx, tx, constdef.WeightKindTotal, "", epoch)
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return new(big.Int), nil
	}
	gw, err := s.valueAt(ctx, tx, constdef.WeightKindGauge, gauge.GaugeID, epoch)
	if err != nil {
		return nil, err
	}
	tw, err := s.valueAt(ctx, tx, constdef.WeightKindType, typeRef(gauge.TypeID), epoch)
	if err != nil {
		return nil, err
	}
	rel := new(big.Int).Mul(tw, gw)
	rel.Mul(rel, utils.FixedPointOne())
	rel.Div(rel, total)
	return rel, nil
}

func (s *ControllerServiceImpl) GaugeRelativeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, t int64) (*big.Int, error) {
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return nil, err
	}
	if gauge == nil {
		return nil, errcode.ErrNotAGauge
	}
	return s.relativeWeightAt(ctx, tx, gauge, s.clock.EpochStart(t))
}

func (s *ControllerServiceImpl) GetGaugeWeight(ctx context.Context, tx *gorm.DB, gaugeID string, t int64) (*big.Int, error) {
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return nil, err
	}
	if gauge == nil {
		return nil, errcode.ErrNotAGauge
	}
	return s.valueAt(ctx, tx, constdef.WeightKindGauge, gaugeID, s.clock.EpochStart(t))
}

func (s *ControllerServiceImpl) GetTypeWeight(ctx context.Context, tx *gorm.DB, typeID int64, t int64) (*big.Int, error) {
	info, err := s.typeDAO.GetByTypeID(ctx, tx, typeID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errcode.ErrUnknownType
	}
	return s.valueAt(ctx, tx, constdef.WeightKindType, typeRef(typeID), s.clock.EpochStart(t))
}

func (s *ControllerServiceImpl) GetTotalWeight(ctx context.Context, tx *gorm.DB, t int64) (*big.Int, error) {
	return s.valueAt(ctx, tx, constdef.WeightKindTotal, "", s.clock.EpochStart(t))
}

func (s *ControllerServiceImpl) GetGauge(ctx context.Context, tx *gorm.DB, gaugeID string) (*do.GaugeInfo, error) {
	return s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID)
}

func (s *ControllerServiceImpl) GetGauges(ctx context.Context, tx *gorm.DB) ([]*do.GaugeInfo, error) {
	return s.gaugeDAO.GetAll(ctx, tx)
}

func (s *ControllerServiceImpl) GetTypes(ctx context.Context, tx *gorm.DB) ([]*do.GaugeTypeInfo, error) {
	return s.typeDAO.GetAll(ctx, tx)
}
