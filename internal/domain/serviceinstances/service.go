package serviceinstances

import (
	"context"
	"strings"
	"time"

	"vet-clinic-records/internal/platform/dates"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create valida y arma el agregado; el repo lo escribe en una transacción.
func (s *Service) Create(ctx context.Context, in CreateInput) (Instance, error) {
	petID := strings.TrimSpace(in.PetID)
	if petID == "" {
		return Instance{}, errors.NotValidf("empty pet_id")
	}
	reason, err := requireText("service_reason", in.Reason)
	if err != nil {
		return Instance{}, err
	}
	diagnosis, err := requireText("general_diagnosis", in.Diagnosis)
	if err != nil {
		return Instance{}, err
	}
	tags, err := requireEach("service_type", in.ServiceTypes)
	if err != nil {
		return Instance{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	serviceDate := dates.Of(s.now())
	if in.ServiceDate != nil {
		serviceDate = *in.ServiceDate
	}

	inst := Instance{
		ID:               id,
		ServiceDate:      serviceDate,
		ServiceTypes:     tags,
		Reason:           reason,
		Diagnosis:        diagnosis,
		RequiresFollowup: in.RequiresFollowup,
		FollowupDate:     in.FollowupDate,
		PetID:            petID,
	}

	groomings, err := requireEach("grooming_type", in.GroomingTypes)
	if err != nil {
		return Instance{}, err
	}
	for _, g := range groomings {
		inst.Groomings = append(inst.Groomings, Grooming{Type: g, InstanceID: id})
	}

	if in.PreventiveCare != nil {
		pc, err := validatePreventiveCare(*in.PreventiveCare)
		if err != nil {
			return Instance{}, err
		}
		for _, t := range pc.Treatments {
			inst.PreventiveCare = append(inst.PreventiveCare, PreventiveCare{Treatment: t, VetID: pc.VetID, InstanceID: id})
		}
	}

	if in.Surgery != nil {
		sg, err := validateSurgery(*in.Surgery)
		if err != nil {
			return Instance{}, err
		}
		inst.Surgery = &Surgery{
			Name:                  sg.Name,
			AnesthesiaUsed:        sg.AnesthesiaUsed,
			Complications:         sg.Complications,
			Outcome:               sg.Outcome,
			VeterinarianDiagnosis: sg.VeterinarianDiagnosis,
			VetID:                 sg.VetID,
			InstanceID:            id,
		}
	}

	return s.repo.Create(ctx, inst)
}

func (s *Service) GetByID(ctx context.Context, id string) (Instance, error) {
	if strings.TrimSpace(id) == "" {
		return Instance{}, errors.NotFoundf("service instance %q", id)
	}
	return s.repo.GetByID(ctx, id)
}

// History: una entrada por instancia de la mascota, ordenadas por id.
func (s *Service) History(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error) {
	q.PetID = strings.TrimSpace(q.PetID)
	if q.PetID == "" {
		return nil, errors.NotValidf("empty pet_id")
	}
	if q.Limit < 1 || q.Offset < 0 {
		return nil, errors.NotValidf("pagination limit=%d offset=%d", q.Limit, q.Offset)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, errors.NotValidf("date range %s..%s", q.From, q.To)
	}
	return s.repo.HistoryByPet(ctx, q)
}

// Update: 0 filas = la instancia no existe.
func (s *Service) Update(ctx context.Context, id string, p Patch) (int64, error) {
	var err error
	if p.Reason, err = optionalText("service_reason", p.Reason); err != nil {
		return 0, err
	}
	if p.Diagnosis, err = optionalText("general_diagnosis", p.Diagnosis); err != nil {
		return 0, err
	}
	if p.ServiceTypes != nil {
		tags, err := requireEach("service_type", *p.ServiceTypes)
		if err != nil {
			return 0, err
		}
		p.ServiceTypes = &tags
	}
	return s.repo.Update(ctx, id, p)
}

// Delete borra la instancia junto con etiquetas e hijos.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddGroomings(ctx context.Context, instanceID string, types []string) ([]Grooming, error) {
	types, err := requireEach("grooming_type", types)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, errors.NotValidf("empty grooming_type")
	}
	return s.repo.AddGroomings(ctx, instanceID, types)
}

func (s *Service) AddPreventiveCare(ctx context.Context, instanceID string, in NewPreventiveCare) ([]PreventiveCare, error) {
	in, err := validatePreventiveCare(in)
	if err != nil {
		return nil, err
	}
	return s.repo.AddPreventiveCare(ctx, instanceID, in)
}

// AddSurgery: una segunda cirugía en la misma instancia es AlreadyExists.
func (s *Service) AddSurgery(ctx context.Context, instanceID string, in NewSurgery) (Surgery, error) {
	in, err := validateSurgery(in)
	if err != nil {
		return Surgery{}, err
	}
	return s.repo.AddSurgery(ctx, instanceID, in)
}

func (s *Service) UpdateSurgery(ctx context.Context, id int64, p SurgeryPatch) (int64, error) {
	var err error
	if p.Name, err = optionalText("surgery_name", p.Name); err != nil {
		return 0, err
	}
	if p.VetID, err = optionalText("vet_id", p.VetID); err != nil {
		return 0, err
	}
	return s.repo.UpdateSurgery(ctx, id, p)
}

func (s *Service) DeleteGrooming(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteGrooming(ctx, id)
}

func (s *Service) DeletePreventiveCare(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeletePreventiveCare(ctx, id)
}

func (s *Service) DeleteSurgery(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteSurgery(ctx, id)
}

func validatePreventiveCare(in NewPreventiveCare) (NewPreventiveCare, error) {
	treatments, err := requireEach("treatment", in.Treatments)
	if err != nil {
		return NewPreventiveCare{}, err
	}
	if len(treatments) == 0 {
		return NewPreventiveCare{}, errors.NotValidf("empty treatment")
	}
	vetID, err := requireText("vet_id", in.VetID)
	if err != nil {
		return NewPreventiveCare{}, err
	}
	return NewPreventiveCare{Treatments: treatments, VetID: vetID}, nil
}

func validateSurgery(in NewSurgery) (NewSurgery, error) {
	name, err := requireText("surgery_name", in.Name)
	if err != nil {
		return NewSurgery{}, err
	}
	vetID, err := requireText("vet_id", in.VetID)
	if err != nil {
		return NewSurgery{}, err
	}
	in.Name = name
	in.VetID = vetID
	return in, nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.NotValidf("empty %s", field)
	}
	return v, nil
}

// optionalText: nil pasa; presente pero vacío es inválido.
func optionalText(field string, v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t, err := requireText(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// requireEach recorta cada valor; ninguno puede quedar vacío.
// Repetidos se conservan.
func requireEach(field string, vs []string) ([]string, error) {
	if vs == nil {
		return nil, nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		t, err := requireText(field, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
