package analysis

import (
	"testing"

	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

func TestCheckResponsesAllEscapeCheck(t *testing.T) {
	// White king on e1 checked by the black rook on e4.
	pos := mustPosition(t, "4k3/8/8/8/4r3/8/8/4K3 w - - 0 1")

	threats := DetectThreats(pos)
	responses := GenerateResponses(pos, threats)

	if len(responses.MoveAttacked) == 0 {
		t.Fatal("king moves out of check expected")
	}

	all := append([]string{}, responses.CaptureAttacker...)
	all = append(all, responses.BlockThreat...)
	all = append(all, responses.MoveAttacked...)
	all = append(all, responses.Counterattack...)
	for _, san := range all {
		move, err := rules.DecodeSAN(pos, san)
		if err != nil {
			t.Fatalf("response %q is not legal: %v", san, err)
		}
		after := pos.Update(move)
		kingSq := rules.KingSquare(after.Board(), pos.Turn())
		if rules.IsAttacked(after.Board(), kingSq, pos.Turn().Other()) {
			t.Errorf("response %q leaves the king in check", san)
		}
	}
}

func TestAttackResponsesCapAtFive(t *testing.T) {
	// The d5 queen is attacked by the c6 pawn; the b4 knight can take it.
	pos := mustPosition(t, "4k3/8/2p5/3Q4/1N6/8/8/4K3 w - - 0 1")

	threats := DetectThreats(pos)
	responses := GenerateResponses(pos, threats)

	if len(responses.MoveAttacked) != 5 {
		t.Errorf("MoveAttacked has %d entries, want the cap of 5", len(responses.MoveAttacked))
	}

	foundCapture := false
	for _, san := range responses.CaptureAttacker {
		if san == "Nxc6" {
			foundCapture = true
		}
	}
	if !foundCapture {
		t.Errorf("capturing the attacker with Nxc6 missing from %v", responses.CaptureAttacker)
	}
}

func TestLowValueAttackerThreatGeneratesResponses(t *testing.T) {
	// The d5 queen is defended by the d1 rook but attacked by the cheaper
	// c6 pawn. The attacked piece still gets escape squares proposed.
	pos := mustPosition(t, "4k3/8/2p5/3Q4/8/8/8/3R2K1 w - - 0 1")

	threats := DetectThreats(pos)
	if len(threats) != 1 || threats[0].Category != domain.ThreatLowValueAttacker {
		t.Fatalf("threats = %+v, want one low-value-attacker record", threats)
	}
	if threats[0].Square != chess.D5 {
		t.Errorf("threatened square = %v, want d5", threats[0].Square)
	}

	responses := GenerateResponses(pos, threats)
	if responses.Empty() {
		t.Fatal("attack on the queen should yield responses")
	}
	if len(responses.MoveAttacked) == 0 {
		t.Errorf("queen escape moves missing: %+v", responses)
	}
}

func TestResponseBucketsDeduplicated(t *testing.T) {
	pos := mustPosition(t, "4k3/8/2p5/3Q4/8/8/8/4K3 w - - 0 1")

	threats := DetectThreats(pos)
	responses := GenerateResponses(pos, threats)

	for _, bucket := range [][]string{
		responses.CaptureAttacker,
		responses.BlockThreat,
		responses.MoveAttacked,
		responses.Counterattack,
	} {
		seen := make(map[string]bool)
		for _, san := range bucket {
			if seen[san] {
				t.Errorf("duplicate %q in response bucket", san)
			}
			seen[san] = true
		}
	}
}
