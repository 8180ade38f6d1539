package clinical

var severityPlans = map[string][]string{
	SeverityMild: {
		"Artificial tears 4x daily (preservative-free)",
		"Warm compresses 1-2x daily for 10 minutes",
		"Environmental modifications (humidifier, avoid air drafts)",
		"Omega-3 fatty acid supplementation (2000 mg daily)",
		"Blink exercises during digital device use",
	},
	SeverityModerate: {
		"Preservative-free artificial tears 6-8x daily",
		"Warm compresses with lid massage 2x daily",
		"Lipid-based lubricants for nighttime use",
		"Consider punctal plugs for aqueous deficiency",
		"Topical cyclosporine 0.05% or lifitegrast 5% BID",
		"Oral doxycycline 50 mg daily for MGD (3-month course)",
	},
	SeveritySevere: {
		"Intensive lubrication regimen (hourly if needed)",
		"Punctal occlusion (temporary then permanent)",
		"Topical corticosteroids (short-term, monitored)",
		"Autologous serum tears 4-6x daily",
		"Intense Pulsed Light (IPL) therapy for MGD",
		"Scleral contact lenses for severe surface disease",
		"Referral to dry eye specialist for advanced management",
	},
}

var typePlans = map[string][]string{
	TypeAqueousDeficient: {
		"Prioritize aqueous enhancement strategies",
		"Consider nocturnal ointments for surface protection",
		"Evaluate for underlying autoimmune conditions",
	},
	TypeEvaporative: {
		"Focus on meibomian gland dysfunction management",
		"Lid hygiene with commercial cleansers",
		"Consider azithromycin ophthalmic solution for anterior blepharitis",
	},
}

var followUp = []string{
	"Re-evaluate in 4-6 weeks for treatment response",
	"Adjust therapy based on symptom and sign improvement",
	"Long-term maintenance therapy typically required",
}

// inflammatoryThreshold is the staining sum above which anti-inflammatory therapy leads
const inflammatoryThreshold = 3

// Recommendations builds the management plan: severity tier, type specific
// measures, inflammation, then follow-up
func Recommendations(a Assessment) []string {
	var out []string
	out = append(out, severityPlans[a.Severity]...)
	out = append(out, typePlans[a.DryEyeType]...)
	if a.ComponentScores.Inflammatory >= inflammatoryThreshold {
		out = append(out, "Anti-inflammatory therapy as primary treatment modality")
	}
	return append(out, followUp...)
}
