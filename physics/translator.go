package physics

import (
	"log"

	"github.com/plus3/brickworks/ecs"
)

// TranslationStats counts what one Translate call did.
type TranslationStats struct {
	Received  int
	Discarded int
	// Dropped counts stops of removed colliders whose owner is already gone.
	// They are expected on every despawn and are not logged.
	Dropped   int
	// Published is the number of per-entity records written.
	Published int
}

// Translator turns the Engine's raw pairwise events into per-entity
// Collisions and Triggers components.
type Translator struct {
	engine  *Engine
	storage *ecs.Storage
	logger  *log.Logger
}

// NewTranslator creates a Translator. A nil logger uses the engine's.
func NewTranslator(engine *Engine, storage *ecs.Storage, logger *log.Logger) *Translator {
	if logger == nil {
		logger = engine.Logger()
	}
	return &Translator{engine: engine, storage: storage, logger: logger}
}

type participant struct {
	handle ColliderHandle
	entity ecs.Entity
	tag    UserData
}

type entityRecords struct {
	collisions []Collision
	triggers   []Collision
}

func (t *Translator) resolve(handle ColliderHandle) (participant, bool) {
	entity, ok := t.engine.EntityFromCollider(handle)
	if !ok {
		return participant{}, false
	}
	tag, ok := t.engine.UserData(handle)
	if !ok {
		return participant{}, false
	}
	if !t.storage.Contains(entity) {
		return participant{}, false
	}
	return participant{handle: handle, entity: entity, tag: tag}, true
}

// Translate drains every pending raw event and publishes the resulting
// records. Entities touched by an event get both lists replaced.
func (t *Translator) Translate() TranslationStats {
	events := t.engine.Events().Drain()
	stats := TranslationStats{Received: len(events)}
	if len(events) == 0 {
		return stats
	}

	records := make(map[ecs.Entity]*entityRecords)
	var order []ecs.Entity
	recordsFor := func(entity ecs.Entity) *entityRecords {
		r, ok := records[entity]
		if !ok {
			r = &entityRecords{}
			records[entity] = r
			order = append(order, entity)
		}
		return r
	}

	for _, event := range events {
		p1, ok1 := t.resolve(event.Collider1)
		p2, ok2 := t.resolve(event.Collider2)
		if !ok1 || !ok2 {
			if event.Removed() {
				stats.Dropped++
			} else {
				stats.Discarded++
			}
			continue
		}

		sensor := event.Sensor() || t.engine.IsSensor(p1.handle) || t.engine.IsSensor(p2.handle)
		first, second := t.mirror(event, sensor, p1, p2)

		r1, r2 := recordsFor(p1.entity), recordsFor(p2.entity)
		if sensor {
			r1.triggers = append(r1.triggers, first)
			r2.triggers = append(r2.triggers, second)
		} else {
			r1.collisions = append(r1.collisions, first)
			r2.collisions = append(r2.collisions, second)
		}
		stats.Published += 2
	}

	for _, entity := range order {
		r := records[entity]
		if err := t.storage.Insert(entity, Collisions{Events: r.collisions}); err != nil {
			t.logger.Printf("publish collisions for %v: %v", entity, err)
		}
		if err := t.storage.Insert(entity, Triggers{Events: r.triggers}); err != nil {
			t.logger.Printf("publish triggers for %v: %v", entity, err)
		}
	}

	if stats.Discarded > 0 {
		t.logger.Printf("discarded %d of %d collision events", stats.Discarded, stats.Received)
	}
	return stats
}

// mirror builds one record per participant, each naming the other side.
func (t *Translator) mirror(event RawEvent, sensor bool, p1, p2 participant) (Collision, Collision) {
	if event.Kind == EventStopped {
		return Stopped{Entity: p2.entity, Tag: p2.tag}, Stopped{Entity: p1.entity, Tag: p1.tag}
	}
	if !sensor {
		if contact, ok := t.engine.ContactPair(p1.handle, p2.handle); ok {
			return Started{Entity: p2.entity, Tag: p2.tag, Contact: contact},
				Started{Entity: p1.entity, Tag: p1.tag, Contact: contact.Flipped()}
		}
	}
	return StartedTrigger{Entity: p2.entity, Tag: p2.tag}, StartedTrigger{Entity: p1.entity, Tag: p1.tag}
}
