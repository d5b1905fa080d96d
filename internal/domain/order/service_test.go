package order

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/rxledger/rxledger/internal/domain/prescription"
)

// -- Mocks --

type mockRepo struct {
	orders map[string]*Order
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: make(map[string]*Order)}
}

func (m *mockRepo) Create(_ context.Context, o *Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockRepo) Update(_ context.Context, o *Order) error {
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepo) ListPendingByPharmacy(_ context.Context, pharmacyID string) ([]*Order, error) {
	var out []*Order
	for _, o := range m.orders {
		if o.PharmacyID == pharmacyID && o.Status == StatusPending {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID string) ([]*Order, error) {
	var out []*Order
	for _, o := range m.orders {
		if o.PatientID == patientID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepo) GetPendingByPrescription(_ context.Context, prescriptionID string) (*Order, error) {
	var oldest *Order
	for _, o := range m.orders {
		if o.PrescriptionID != prescriptionID || o.Status != StatusPending {
			continue
		}
		if oldest == nil || o.ID < oldest.ID {
			oldest = o
		}
	}
	if oldest == nil {
		return nil, ErrNotFound
	}
	return oldest, nil
}

type stubPrescriptions struct {
	byID map[string]*prescription.Prescription
}

func (s stubPrescriptions) GetByID(_ context.Context, id string) (*prescription.Prescription, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, prescription.ErrNotFound
	}
	return p, nil
}

func newTestService(prescriptions map[string]*prescription.Prescription) (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, stubPrescriptions{byID: prescriptions}), repo
}

func pendingPrescription(id string) *prescription.Prescription {
	return &prescription.Prescription{
		ID:        id,
		PatientID: "p_1",
		Medicines: []prescription.Medicine{{Name: "Amoxicillin", Status: prescription.LinePending}},
	}
}

// -- Tests --

func TestPlace(t *testing.T) {
	svc, _ := newTestService(map[string]*prescription.Prescription{
		"pres_1": pendingPrescription("pres_1"),
	})

	o := &Order{PatientID: "p_1", PatientName: "Patient 7777", PatientPhone: "9998887777", PharmacyID: "pharmacy_1", PrescriptionID: "pres_1"}
	if err := svc.Place(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(o.ID, "order_") {
		t.Errorf("expected order_ prefix, got %s", o.ID)
	}
	if o.Status != StatusPending {
		t.Errorf("expected pending status, got %s", o.Status)
	}
	if o.PlacedAt.IsZero() {
		t.Error("expected placed timestamp")
	}
}

func TestPlace_UnknownPrescription(t *testing.T) {
	svc, _ := newTestService(nil)

	o := &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_missing"}
	if err := svc.Place(context.Background(), o); err != ErrPrescriptionNotFound {
		t.Errorf("expected ErrPrescriptionNotFound, got %v", err)
	}
}

func TestPlace_NoPendingMedicine(t *testing.T) {
	p := pendingPrescription("pres_1")
	p.Medicines[0].Status = prescription.LineDispensed
	svc, _ := newTestService(map[string]*prescription.Prescription{"pres_1": p})

	o := &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_1"}
	if err := svc.Place(context.Background(), o); err != ErrNoPendingMedicine {
		t.Errorf("expected ErrNoPendingMedicine, got %v", err)
	}
}

func TestProcessPendingForPrescription(t *testing.T) {
	svc, repo := newTestService(map[string]*prescription.Prescription{
		"pres_1": pendingPrescription("pres_1"),
	})

	o := &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_1"}
	svc.Place(context.Background(), o)

	orderID, err := svc.ProcessPendingForPrescription(context.Background(), "pres_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderID != o.ID {
		t.Errorf("expected processed order id %s, got %s", o.ID, orderID)
	}
	if repo.orders[o.ID].Status != StatusProcessed {
		t.Errorf("expected processed status, got %s", repo.orders[o.ID].Status)
	}
}

func TestProcessPendingForPrescription_NoOrder(t *testing.T) {
	svc, _ := newTestService(nil)

	orderID, err := svc.ProcessPendingForPrescription(context.Background(), "pres_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderID != "" {
		t.Errorf("expected empty order id when no pending order exists, got %s", orderID)
	}
}

func TestListPendingByPharmacy_ExcludesProcessed(t *testing.T) {
	svc, _ := newTestService(map[string]*prescription.Prescription{
		"pres_1": pendingPrescription("pres_1"),
		"pres_2": pendingPrescription("pres_2"),
	})

	first := &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_1"}
	svc.Place(context.Background(), first)
	second := &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_2"}
	svc.Place(context.Background(), second)

	svc.ProcessPendingForPrescription(context.Background(), "pres_1")

	queue, err := svc.ListPendingByPharmacy(context.Background(), "pharmacy_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 pending order in queue, got %d", len(queue))
	}
	if queue[0].PrescriptionID != "pres_2" {
		t.Errorf("expected pres_2 order in queue, got %s", queue[0].PrescriptionID)
	}
}

func TestListByPatient_IncludesAllStatuses(t *testing.T) {
	svc, _ := newTestService(map[string]*prescription.Prescription{
		"pres_1": pendingPrescription("pres_1"),
		"pres_2": pendingPrescription("pres_2"),
	})

	svc.Place(context.Background(), &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_1"})
	svc.Place(context.Background(), &Order{PatientID: "p_1", PharmacyID: "pharmacy_1", PrescriptionID: "pres_2"})
	svc.ProcessPendingForPrescription(context.Background(), "pres_1")

	all, err := svc.ListByPatient(context.Background(), "p_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 orders for patient, got %d", len(all))
	}
}
