package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockPeriodRepository is a mock implementation of domain.PeriodRepository
type MockPeriodRepository struct {
	Periods map[int32]*domain.AccountingPeriod
	NextID  int32
	CloseFn func(id int32) error
}

// NewMockPeriodRepository creates a new MockPeriodRepository
func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		Periods: make(map[int32]*domain.AccountingPeriod),
		NextID:  1,
	}
}

// AddPeriod adds a period to the mock repository (helper for tests)
func (m *MockPeriodRepository) AddPeriod(period *domain.AccountingPeriod) *domain.AccountingPeriod {
	if period.ID == 0 {
		period.ID = m.NextID
		m.NextID++
	} else if period.ID >= m.NextID {
		m.NextID = period.ID + 1
	}
	m.Periods[period.ID] = period
	return period
}

// Create creates a new open period
func (m *MockPeriodRepository) Create(month, year int, description string) (*domain.AccountingPeriod, error) {
	for _, p := range m.Periods {
		if p.Month == month && p.Year == year {
			return nil, domain.ErrDuplicatePeriod
		}
	}
	period := &domain.AccountingPeriod{
		ID:          m.NextID,
		Month:       month,
		Year:        year,
		Status:      domain.PeriodStatusOpen,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.NextID++
	m.Periods[period.ID] = period
	return period, nil
}

// GetByID retrieves a period by ID
func (m *MockPeriodRepository) GetByID(id int32) (*domain.AccountingPeriod, error) {
	if p, ok := m.Periods[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPeriodNotFound
}

// GetByMonthYear retrieves a period by its month and year
func (m *MockPeriodRepository) GetByMonthYear(month, year int) (*domain.AccountingPeriod, error) {
	for _, p := range m.Periods {
		if p.Month == month && p.Year == year {
			return p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

// GetAll retrieves all periods
func (m *MockPeriodRepository) GetAll() ([]*domain.AccountingPeriod, error) {
	out := make([]*domain.AccountingPeriod, 0, len(m.Periods))
	for id := int32(1); id < m.NextID; id++ {
		if p, ok := m.Periods[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Close closes a period, refusing to close the only open one
func (m *MockPeriodRepository) Close(id int32) error {
	if m.CloseFn != nil {
		return m.CloseFn(id)
	}
	period, ok := m.Periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	if period.IsOpen() {
		open := 0
		for _, p := range m.Periods {
			if p.IsOpen() {
				open++
			}
		}
		if open == 1 {
			return domain.ErrLastOpenPeriod
		}
	}
	period.Status = domain.PeriodStatusClosed
	period.UpdatedAt = time.Now()
	return nil
}

// Reopen reopens a closed period
func (m *MockPeriodRepository) Reopen(id int32) error {
	period, ok := m.Periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	period.Status = domain.PeriodStatusOpen
	period.UpdatedAt = time.Now()
	return nil
}

// MockProjectRepository is a mock implementation of domain.ProjectRepository
type MockProjectRepository struct {
	Projects map[int32]*domain.Project
	NextID   int32
}

// NewMockProjectRepository creates a new MockProjectRepository
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{
		Projects: make(map[int32]*domain.Project),
		NextID:   1,
	}
}

// AddProject adds a project to the mock repository (helper for tests)
func (m *MockProjectRepository) AddProject(project *domain.Project) *domain.Project {
	if project.ID == 0 {
		project.ID = m.NextID
		m.NextID++
	} else if project.ID >= m.NextID {
		m.NextID = project.ID + 1
	}
	if project.Status == "" {
		project.Status = domain.ProjectStatusActive
	}
	m.Projects[project.ID] = project
	return project
}

// Create creates a new project
func (m *MockProjectRepository) Create(name string) (*domain.Project, error) {
	project := &domain.Project{
		ID:        m.NextID,
		Name:      name,
		Status:    domain.ProjectStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.NextID++
	m.Projects[project.ID] = project
	return project, nil
}

// GetByID retrieves a project by ID
func (m *MockProjectRepository) GetByID(id int32) (*domain.Project, error) {
	if p, ok := m.Projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProjectNotFound
}

// GetAll retrieves all projects
func (m *MockProjectRepository) GetAll() ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(m.Projects))
	for id := int32(1); id < m.NextID; id++ {
		if p, ok := m.Projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets    map[int32]*domain.Budget
	NextID     int32
	FinalizeFn func(id int32) (bool, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) *domain.Budget {
	if budget.ID == 0 {
		budget.ID = m.NextID
		m.NextID++
	} else if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
	return budget
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.NextID
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = time.Now()
	m.NextID++
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	if b, ok := m.Budgets[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetActiveOriginalByProject retrieves the project's active original budget
func (m *MockBudgetRepository) GetActiveOriginalByProject(projectID int32) (*domain.Budget, error) {
	for id := int32(1); id < m.NextID; id++ {
		b, ok := m.Budgets[id]
		if !ok {
			continue
		}
		if b.ProjectID == projectID && b.Type == domain.BudgetTypeOriginal && b.Status == domain.BudgetStatusActive {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAllByProject retrieves all budgets of a project
func (m *MockBudgetRepository) GetAllByProject(projectID int32) ([]*domain.Budget, error) {
	out := make([]*domain.Budget, 0)
	for id := int32(1); id < m.NextID; id++ {
		if b, ok := m.Budgets[id]; ok && b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Update updates a budget's description and date
func (m *MockBudgetRepository) Update(id int32, description string, date time.Time) (*domain.Budget, error) {
	b, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	b.Description = description
	b.Date = date
	b.UpdatedAt = time.Now()
	return b, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(id int32) error {
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// Finalize flips the finalized flag, reporting false when already set
func (m *MockBudgetRepository) Finalize(id int32) (bool, error) {
	if m.FinalizeFn != nil {
		return m.FinalizeFn(id)
	}
	b, ok := m.Budgets[id]
	if !ok {
		return false, domain.ErrBudgetNotFound
	}
	if b.Finalized {
		return false, nil
	}
	b.Finalized = true
	b.UpdatedAt = time.Now()
	return true, nil
}

// MockBudgetLineRepository is a mock implementation of domain.BudgetLineRepository
type MockBudgetLineRepository struct {
	Lines  []*domain.BudgetLine
	NextID int32
}

// NewMockBudgetLineRepository creates a new MockBudgetLineRepository
func NewMockBudgetLineRepository() *MockBudgetLineRepository {
	return &MockBudgetLineRepository{NextID: 1}
}

// AddLine adds a line to the mock repository (helper for tests)
func (m *MockBudgetLineRepository) AddLine(line *domain.BudgetLine) *domain.BudgetLine {
	if line.ID == 0 {
		line.ID = m.NextID
		m.NextID++
	} else if line.ID >= m.NextID {
		m.NextID = line.ID + 1
	}
	m.Lines = append(m.Lines, line)
	return line
}

// Create creates a new budget line
func (m *MockBudgetLineRepository) Create(line *domain.BudgetLine) (*domain.BudgetLine, error) {
	line.ID = m.NextID
	line.CreatedAt = time.Now()
	line.UpdatedAt = time.Now()
	m.NextID++
	m.Lines = append(m.Lines, line)
	return line, nil
}

// GetByID retrieves a line by ID
func (m *MockBudgetLineRepository) GetByID(id int32) (*domain.BudgetLine, error) {
	for _, l := range m.Lines {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, domain.ErrLineNotFound
}

// GetByBudget retrieves all lines of a budget in insertion order
func (m *MockBudgetLineRepository) GetByBudget(budgetID int32) ([]*domain.BudgetLine, error) {
	out := make([]*domain.BudgetLine, 0)
	for _, l := range m.Lines {
		if l.BudgetID == budgetID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Update updates an existing line
func (m *MockBudgetLineRepository) Update(line *domain.BudgetLine) (*domain.BudgetLine, error) {
	for i, l := range m.Lines {
		if l.ID == line.ID {
			line.CreatedAt = l.CreatedAt
			line.UpdatedAt = time.Now()
			m.Lines[i] = line
			return line, nil
		}
	}
	return nil, domain.ErrLineNotFound
}

// Delete removes a line
func (m *MockBudgetLineRepository) Delete(id int32) error {
	for i, l := range m.Lines {
		if l.ID == id {
			m.Lines = append(m.Lines[:i], m.Lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrLineNotFound
}

// SumAmountByBudget sums line amounts of a budget
func (m *MockBudgetLineRepository) SumAmountByBudget(budgetID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range m.Lines {
		if l.BudgetID == budgetID {
			sum = sum.Add(l.Amount)
		}
	}
	return sum, nil
}

// MockChangeOrderRepository is a mock implementation of domain.ChangeOrderRepository
type MockChangeOrderRepository struct {
	Orders     map[int32]*domain.InternalChangeOrder
	NextID     int32
	NextLineID int32
	Budgets    *MockBudgetRepository
	CreateFn   func(ico *domain.InternalChangeOrder, revised *domain.Budget) (*domain.InternalChangeOrder, *domain.Budget, error)
}

// NewMockChangeOrderRepository creates a new MockChangeOrderRepository. The
// budget repository is shared so the atomically created revised budget is
// visible to budget lookups, as it is through postgres.
func NewMockChangeOrderRepository(budgets *MockBudgetRepository) *MockChangeOrderRepository {
	return &MockChangeOrderRepository{
		Orders:     make(map[int32]*domain.InternalChangeOrder),
		NextID:     1,
		NextLineID: 1,
		Budgets:    budgets,
	}
}

// AddOrder adds a change order to the mock repository (helper for tests)
func (m *MockChangeOrderRepository) AddOrder(ico *domain.InternalChangeOrder) *domain.InternalChangeOrder {
	if ico.ID == 0 {
		ico.ID = m.NextID
		m.NextID++
	} else if ico.ID >= m.NextID {
		m.NextID = ico.ID + 1
	}
	for _, line := range ico.Lines {
		if line.ID == 0 {
			line.ID = m.NextLineID
			m.NextLineID++
		}
		line.ChangeOrderID = ico.ID
	}
	m.Orders[ico.ID] = ico
	return ico
}

// CreateWithRevisedBudget persists the change order and its revised budget
func (m *MockChangeOrderRepository) CreateWithRevisedBudget(ico *domain.InternalChangeOrder, revised *domain.Budget) (*domain.InternalChangeOrder, *domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ico, revised)
	}
	if m.Budgets != nil {
		if _, err := m.Budgets.Create(revised); err != nil {
			return nil, nil, err
		}
	}
	ico.ID = m.NextID
	ico.RevisedBudgetID = revised.ID
	ico.CreatedAt = time.Now()
	m.NextID++
	for _, line := range ico.Lines {
		line.ID = m.NextLineID
		line.ChangeOrderID = ico.ID
		m.NextLineID++
	}
	m.Orders[ico.ID] = ico
	return ico, revised, nil
}

// GetByID retrieves a change order by ID
func (m *MockChangeOrderRepository) GetByID(id int32) (*domain.InternalChangeOrder, error) {
	if ico, ok := m.Orders[id]; ok {
		return ico, nil
	}
	return nil, domain.ErrChangeOrderNotFound
}

// GetByOriginalBudget retrieves all change orders amending a budget
func (m *MockChangeOrderRepository) GetByOriginalBudget(budgetID int32) ([]*domain.InternalChangeOrder, error) {
	out := make([]*domain.InternalChangeOrder, 0)
	for id := int32(1); id < m.NextID; id++ {
		if ico, ok := m.Orders[id]; ok && ico.OriginalBudgetID == budgetID {
			out = append(out, ico)
		}
	}
	return out, nil
}

// GetByRevisedBudget retrieves the change order that produced a revised budget
func (m *MockChangeOrderRepository) GetByRevisedBudget(budgetID int32) (*domain.InternalChangeOrder, error) {
	for _, ico := range m.Orders {
		if ico.RevisedBudgetID == budgetID {
			return ico, nil
		}
	}
	return nil, domain.ErrChangeOrderNotFound
}

// GetLinesByOriginalBudget retrieves every change order line amending a budget
func (m *MockChangeOrderRepository) GetLinesByOriginalBudget(budgetID int32) ([]*domain.InternalChangeOrderLine, error) {
	out := make([]*domain.InternalChangeOrderLine, 0)
	for id := int32(1); id < m.NextID; id++ {
		if ico, ok := m.Orders[id]; ok && ico.OriginalBudgetID == budgetID {
			out = append(out, ico.Lines...)
		}
	}
	return out, nil
}

// SumTotalChangeByOriginalBudget sums total change amounts amending a budget
func (m *MockChangeOrderRepository) SumTotalChangeByOriginalBudget(budgetID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, ico := range m.Orders {
		if ico.OriginalBudgetID == budgetID {
			sum = sum.Add(ico.TotalChangeAmount)
		}
	}
	return sum, nil
}

// MockECOLineRepository is a mock implementation of domain.ECOLineRepository
type MockECOLineRepository struct {
	Lines  []*domain.ExternalChangeOrderLine
	NextID int32
}

// NewMockECOLineRepository creates a new MockECOLineRepository
func NewMockECOLineRepository() *MockECOLineRepository {
	return &MockECOLineRepository{NextID: 1}
}

// AddLine adds a line to the mock repository (helper for tests)
func (m *MockECOLineRepository) AddLine(line *domain.ExternalChangeOrderLine) *domain.ExternalChangeOrderLine {
	if line.ID == 0 {
		line.ID = m.NextID
		m.NextID++
	} else if line.ID >= m.NextID {
		m.NextID = line.ID + 1
	}
	if line.Status == "" {
		line.Status = domain.ECOLineStatusActive
	}
	m.Lines = append(m.Lines, line)
	return line
}

// Create creates a new external change order line
func (m *MockECOLineRepository) Create(line *domain.ExternalChangeOrderLine) (*domain.ExternalChangeOrderLine, error) {
	line.ID = m.NextID
	line.CreatedAt = time.Now()
	line.UpdatedAt = time.Now()
	m.NextID++
	m.Lines = append(m.Lines, line)
	return line, nil
}

// GetByID retrieves a line by ID
func (m *MockECOLineRepository) GetByID(id int32) (*domain.ExternalChangeOrderLine, error) {
	for _, l := range m.Lines {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, domain.ErrECOLineNotFound
}

// GetActiveByProject retrieves a project's active lines
func (m *MockECOLineRepository) GetActiveByProject(projectID int32) ([]*domain.ExternalChangeOrderLine, error) {
	out := make([]*domain.ExternalChangeOrderLine, 0)
	for _, l := range m.Lines {
		if l.ProjectID == projectID && l.Status == domain.ECOLineStatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

// GetAllByProject retrieves all of a project's lines
func (m *MockECOLineRepository) GetAllByProject(projectID int32) ([]*domain.ExternalChangeOrderLine, error) {
	out := make([]*domain.ExternalChangeOrderLine, 0)
	for _, l := range m.Lines {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Deactivate marks a line inactive
func (m *MockECOLineRepository) Deactivate(id int32) error {
	for _, l := range m.Lines {
		if l.ID == id {
			l.Status = domain.ECOLineStatusInactive
			l.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrECOLineNotFound
}

// MockDocumentRepository is a mock implementation of domain.DocumentRepository
type MockDocumentRepository struct {
	Documents map[uuid.UUID]*domain.Document
	Order     []uuid.UUID
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		Documents: make(map[uuid.UUID]*domain.Document),
	}
}

// Create stores a document metadata row
func (m *MockDocumentRepository) Create(doc *domain.Document) (*domain.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	m.Documents[doc.ID] = doc
	m.Order = append(m.Order, doc.ID)
	return doc, nil
}

// GetByID retrieves a document by ID
func (m *MockDocumentRepository) GetByID(id uuid.UUID) (*domain.Document, error) {
	if doc, ok := m.Documents[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

// GetByChangeOrder retrieves documents attached to a change order
func (m *MockDocumentRepository) GetByChangeOrder(changeOrderID int32) ([]*domain.Document, error) {
	out := make([]*domain.Document, 0)
	for _, id := range m.Order {
		if doc, ok := m.Documents[id]; ok && doc.ChangeOrderID == changeOrderID {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Delete removes a document metadata row
func (m *MockDocumentRepository) Delete(id uuid.UUID) error {
	if _, ok := m.Documents[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.Documents, id)
	return nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*domain.User)}
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.Users[auth0ID] = user
	return user, nil
}

// MockDocumentStore is an in-memory implementation of storage.DocumentStore
type MockDocumentStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	UploadErr error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes under the given key
func (m *MockDocumentStore) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectKey] = buf.Bytes()
	return nil
}

// Delete removes the object under the given key
func (m *MockDocumentStore) Delete(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectKey)
	return nil
}

// PresignURL returns a deterministic fake URL for the key
func (m *MockDocumentStore) PresignURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s", objectKey), nil
}

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent pairs an event with the project it was published to.
// ProjectID is zero for system-wide events.
type PublishedEvent struct {
	ProjectID int32
	Event     websocket.Event
	All       bool
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records a project-scoped event
func (m *MockPublisher) Publish(projectID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{ProjectID: projectID, Event: event})
}

// PublishAll records a system-wide event
func (m *MockPublisher) PublishAll(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Event: event, All: true})
}

// EventTypes returns the types of all recorded events in order
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Event.Type)
	}
	return out
}
