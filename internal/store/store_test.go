package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/agentbed/testbed/internal/config"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/store/model"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

const (
	insertPersonaStm = "INSERT INTO personas (id, name, background, tags) VALUES ('%s', '%s', '%s', '[]');"
	insertGoalStm    = "INSERT INTO goals (id, name, objective, success_criteria, initial_prompt, max_turns) VALUES ('%s', '%s', '%s', '%s', '%s', %d);"
	insertOrgStm     = "INSERT INTO organizations (id, name, description) VALUES ('%s', '%s', '%s');"
)

var _ = Describe("store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		Expect(s.InitialMigration(context.TODO())).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM personas;")
		gormdb.Exec("DELETE FROM goals;")
		gormdb.Exec("DELETE FROM organizations;")
	})

	Context("persona", func() {
		It("creates and reads back a persona", func() {
			created, err := s.Persona().Create(context.TODO(), model.Persona{
				ID:         uuid.New(),
				Name:       "Dana",
				Background: "procurement lead",
				Tags:       model.MakeTags([]string{"b2b", "skeptical"}),
			})
			Expect(err).To(BeNil())

			got, err := s.Persona().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(got.Name).To(Equal("Dana"))

			resource := got.ToApiResource()
			Expect(resource.Tags).To(Equal([]string{"b2b", "skeptical"}))
		})

		It("returns ErrRecordNotFound for an unknown id", func() {
			_, err := s.Persona().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("filters the list by organization", func() {
			org := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertOrgStm, org.String(), "acme", "widgets"))
			Expect(tx.Error).To(BeNil())

			p1 := uuid.New()
			tx = gormdb.Exec(fmt.Sprintf("INSERT INTO personas (id, name, background, organization_id, tags) VALUES ('%s', 'in-org', 'bg', '%s', '[]');", p1.String(), org.String()))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertPersonaStm, uuid.New().String(), "no-org", "bg"))
			Expect(tx.Error).To(BeNil())

			personas, err := s.Persona().List(context.TODO(), store.NewPersonaQueryFilter().ByOrganizationID(org.String()), nil)
			Expect(err).To(BeNil())
			Expect(personas).To(HaveLen(1))
			Expect(personas[0].Name).To(Equal("in-org"))
		})

		It("updates fields in place", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertPersonaStm, id.String(), "before", "bg"))
			Expect(tx.Error).To(BeNil())

			updated, err := s.Persona().Update(context.TODO(), model.Persona{ID: id, Name: "after"})
			Expect(err).To(BeNil())
			Expect(updated.Name).To(Equal("after"))
		})

		It("deletes and reports missing rows", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertPersonaStm, id.String(), "doomed", "bg"))
			Expect(tx.Error).To(BeNil())

			Expect(s.Persona().Delete(context.TODO(), id)).To(BeNil())
			Expect(s.Persona().Delete(context.TODO(), id)).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("goal", func() {
		It("creates and reads back a goal", func() {
			created, err := s.Goal().Create(context.TODO(), model.Goal{
				ID:              uuid.New(),
				Name:            "pricing",
				Objective:       "negotiate a discount",
				SuccessCriteria: "price reduced",
				InitialPrompt:   "Hi",
				MaxTurns:        15,
			})
			Expect(err).To(BeNil())

			got, err := s.Goal().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(got.MaxTurns).To(Equal(15))
		})

		It("lists goals sorted by creation time", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertGoalStm, uuid.New().String(), "g1", "o1", "c1", "p1", 5))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertGoalStm, uuid.New().String(), "g2", "o2", "c2", "p2", 5))
			Expect(tx.Error).To(BeNil())

			goals, err := s.Goal().List(context.TODO(), store.NewGoalQueryOptions().WithSortOrder(store.SortByCreatedTime))
			Expect(err).To(BeNil())
			Expect(goals).To(HaveLen(2))
		})

		It("returns ErrRecordNotFound when updating an unknown goal", func() {
			_, err := s.Goal().Update(context.TODO(), model.Goal{ID: uuid.New(), Name: "nope"})
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("organization", func() {
		It("rejects duplicate names", func() {
			_, err := s.Organization().Create(context.TODO(), model.Organization{ID: uuid.New(), Name: "acme", Description: "widgets"})
			Expect(err).To(BeNil())

			_, err = s.Organization().Create(context.TODO(), model.Organization{ID: uuid.New(), Name: "acme", Description: "again"})
			Expect(err).To(MatchError(store.ErrDuplicateKey))
		})

		It("round-trips optional fields", func() {
			kind := "startup"
			created, err := s.Organization().Create(context.TODO(), model.Organization{
				ID: uuid.New(), Name: "initech", Description: "tps reports", Type: &kind,
			})
			Expect(err).To(BeNil())

			got, err := s.Organization().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(got.Type).ToNot(BeNil())
			Expect(*got.Type).To(Equal("startup"))
			Expect(got.Industry).To(BeNil())
		})
	})

	Context("seed", func() {
		It("is idempotent", func() {
			Expect(s.Seed()).To(BeNil())
			Expect(s.Seed()).To(BeNil())

			var count int
			tx := gormdb.Raw("SELECT COUNT(*) FROM personas WHERE name = 'Example Persona'").Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(1))
		})
	})

	Context("transaction", func() {
		It("rolls back uncommitted writes", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = s.Persona().Create(ctx, model.Persona{ID: uuid.New(), Name: "ghost", Tags: model.MakeTags(nil)})
			Expect(err).To(BeNil())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			var count int
			tx := gormdb.Raw("SELECT COUNT(*) FROM personas WHERE name = 'ghost'").Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(0))
		})
	})
})
