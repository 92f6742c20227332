package importer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ relationStore = &relationStoreMock{}

type relationStoreMock struct {
	LinkServiceTypesFunc   func(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID) error
	SetCommissionRatesFunc func(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID, rate decimal.Decimal) error
	LinkTagsFunc           func(ctx context.Context, vendorID uuid.UUID, tagIDs []uuid.UUID) error

	calls struct {
		LinkServiceTypes []struct {
			VendorID       uuid.UUID
			ServiceTypeIDs []uuid.UUID
		}
		SetCommissionRates []struct {
			VendorID       uuid.UUID
			ServiceTypeIDs []uuid.UUID
			Rate           decimal.Decimal
		}
		LinkTags []struct {
			VendorID uuid.UUID
			TagIDs   []uuid.UUID
		}
	}
	lockLinkServiceTypes   sync.RWMutex
	lockSetCommissionRates sync.RWMutex
	lockLinkTags           sync.RWMutex
}

func (mock *relationStoreMock) LinkServiceTypes(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID) error {
	if mock.LinkServiceTypesFunc == nil {
		panic("relationStoreMock.LinkServiceTypesFunc: method is nil but relationStore.LinkServiceTypes was just called")
	}
	callInfo := struct {
		VendorID       uuid.UUID
		ServiceTypeIDs []uuid.UUID
	}{VendorID: vendorID, ServiceTypeIDs: serviceTypeIDs}
	mock.lockLinkServiceTypes.Lock()
	mock.calls.LinkServiceTypes = append(mock.calls.LinkServiceTypes, callInfo)
	mock.lockLinkServiceTypes.Unlock()
	return mock.LinkServiceTypesFunc(ctx, vendorID, serviceTypeIDs)
}

func (mock *relationStoreMock) LinkServiceTypesCalls() []struct {
	VendorID       uuid.UUID
	ServiceTypeIDs []uuid.UUID
} {
	mock.lockLinkServiceTypes.RLock()
	calls := mock.calls.LinkServiceTypes
	mock.lockLinkServiceTypes.RUnlock()
	return calls
}

func (mock *relationStoreMock) SetCommissionRates(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID, rate decimal.Decimal) error {
	if mock.SetCommissionRatesFunc == nil {
		panic("relationStoreMock.SetCommissionRatesFunc: method is nil but relationStore.SetCommissionRates was just called")
	}
	callInfo := struct {
		VendorID       uuid.UUID
		ServiceTypeIDs []uuid.UUID
		Rate           decimal.Decimal
	}{VendorID: vendorID, ServiceTypeIDs: serviceTypeIDs, Rate: rate}
	mock.lockSetCommissionRates.Lock()
	mock.calls.SetCommissionRates = append(mock.calls.SetCommissionRates, callInfo)
	mock.lockSetCommissionRates.Unlock()
	return mock.SetCommissionRatesFunc(ctx, vendorID, serviceTypeIDs, rate)
}

func (mock *relationStoreMock) SetCommissionRatesCalls() []struct {
	VendorID       uuid.UUID
	ServiceTypeIDs []uuid.UUID
	Rate           decimal.Decimal
} {
	mock.lockSetCommissionRates.RLock()
	calls := mock.calls.SetCommissionRates
	mock.lockSetCommissionRates.RUnlock()
	return calls
}

func (mock *relationStoreMock) LinkTags(ctx context.Context, vendorID uuid.UUID, tagIDs []uuid.UUID) error {
	if mock.LinkTagsFunc == nil {
		panic("relationStoreMock.LinkTagsFunc: method is nil but relationStore.LinkTags was just called")
	}
	callInfo := struct {
		VendorID uuid.UUID
		TagIDs   []uuid.UUID
	}{VendorID: vendorID, TagIDs: tagIDs}
	mock.lockLinkTags.Lock()
	mock.calls.LinkTags = append(mock.calls.LinkTags, callInfo)
	mock.lockLinkTags.Unlock()
	return mock.LinkTagsFunc(ctx, vendorID, tagIDs)
}

func (mock *relationStoreMock) LinkTagsCalls() []struct {
	VendorID uuid.UUID
	TagIDs   []uuid.UUID
} {
	mock.lockLinkTags.RLock()
	calls := mock.calls.LinkTags
	mock.lockLinkTags.RUnlock()
	return calls
}
