package boss

import (
	"testing"
	"time"

	"cgtminer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fightStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEncounterForTest(totalMined float64) *Encounter {
	return New(config.Default().Events.Boss, "System Sentinel", totalMined, fightStart)
}

func TestNew_HealthScalesWithLifetimeEarnings(t *testing.T) {
	assert.Equal(t, float64(1000), newEncounterForTest(0).MaxHP)
	assert.Equal(t, float64(1000), newEncounterForTest(9999).MaxHP)
	assert.Equal(t, float64(3000), newEncounterForTest(35000).MaxHP)
}

func TestNew_WindowAndIdentity(t *testing.T) {
	e := newEncounterForTest(0)

	assert.Equal(t, "System Sentinel", e.Name)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, fightStart.Add(30*time.Second), e.Deadline())
	assert.False(t, e.Expired(fightStart.Add(29*time.Second)))
	assert.True(t, e.Expired(fightStart.Add(31*time.Second)))
}

func TestDamage_KillingBlowAndClamp(t *testing.T) {
	e := newEncounterForTest(0)

	assert.False(t, e.Damage(400))
	assert.Equal(t, float64(600), e.HP())

	// Overkill drives the pool negative but displays as zero.
	assert.True(t, e.Damage(10000))
	assert.Equal(t, float64(0), e.HP())
	assert.True(t, e.Defeated())

	// Hitting a corpse is not a second kill.
	assert.False(t, e.Damage(50))
}

func TestDamage_NonPositiveIgnored(t *testing.T) {
	e := newEncounterForTest(0)

	assert.False(t, e.Damage(0))
	assert.False(t, e.Damage(-5))
	assert.Equal(t, float64(1000), e.HP())
}

func TestAmbientTick(t *testing.T) {
	e := newEncounterForTest(0)

	assert.False(t, e.AmbientTick())
	assert.Equal(t, float64(980), e.HP())
}

func TestAutomationDamage(t *testing.T) {
	e := newEncounterForTest(0)

	// power 500 x 0.1 automation share
	dmg, killed := e.AutomationDamage(500)
	assert.Equal(t, float64(50), dmg)
	assert.False(t, killed)
	assert.Equal(t, float64(950), e.HP())
}

func TestStrike_RequiresFullCharge(t *testing.T) {
	e := newEncounterForTest(0)

	_, _, err := e.Strike()
	assert.ErrorIs(t, err, ErrStrikeNotCharged)

	e.ChargeTick(5 * time.Second)
	_, _, err = e.Strike()
	assert.ErrorIs(t, err, ErrStrikeNotCharged)

	e.ChargeTick(10 * time.Second)
	assert.Equal(t, float64(1), e.Charge())

	damage, killed, err := e.Strike()
	require.NoError(t, err)
	assert.Equal(t, float64(250), damage)
	assert.False(t, killed)
	assert.Equal(t, float64(750), e.HP())
	assert.Equal(t, float64(0), e.Charge())
}

func TestStrike_CanBeKillingBlow(t *testing.T) {
	e := newEncounterForTest(0)
	e.Damage(900)
	e.ChargeTick(time.Minute)

	_, killed, err := e.Strike()
	require.NoError(t, err)
	assert.True(t, killed)
}

func TestChargeTick_Saturates(t *testing.T) {
	e := newEncounterForTest(0)

	e.ChargeTick(time.Second)
	assert.InDelta(t, 0.12, e.Charge(), 1e-9)

	e.ChargeTick(time.Hour)
	assert.Equal(t, float64(1), e.Charge())
}

func TestKillReward(t *testing.T) {
	e := newEncounterForTest(0)
	assert.Equal(t, float64(700), e.KillReward(7))
}
