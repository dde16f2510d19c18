package catalog

import m "github.com/claude/liftlog/internal/models"

// builtin is the canonical catalog. Order matters: when two entries share a
// normalized name or alias, the earlier one wins.
var builtin = []m.ExerciseDefinition{
	// Chest
	{ID: "bench_press", Name: "Bench Press", MuscleGroup: m.MuscleChest, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleTriceps, m.MuscleShoulders},
		Aliases:          []string{"Barbell Bench Press", "Flat Bench Press", "BB Bench", "Bench"}},
	{ID: "incline_bench_press", Name: "Incline Bench Press", MuscleGroup: m.MuscleChest, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleShoulders, m.MuscleTriceps},
		Aliases:          []string{"Incline Barbell Bench Press", "Barbell Incline Bench Press"}},
	{ID: "dumbbell_bench_press", Name: "Dumbbell Bench Press", MuscleGroup: m.MuscleChest, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleTriceps},
		Aliases:          []string{"DB Bench Press", "Bench Press Dumbbell"}},
	{ID: "incline_dumbbell_press", Name: "Incline Dumbbell Press", MuscleGroup: m.MuscleChest, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleShoulders},
		Aliases:          []string{"Incline Bench Press Dumbbell", "Incline DB Press"}},
	{ID: "chest_fly", Name: "Chest Fly", MuscleGroup: m.MuscleChest, Equipment: "dumbbell",
		Aliases: []string{"Dumbbell Fly", "Chest Fly Dumbbell", "Pec Fly"}},
	{ID: "cable_crossover", Name: "Cable Crossover", MuscleGroup: m.MuscleChest, Equipment: "cable",
		Aliases: []string{"Cable Fly", "Cable Crossovers"}},
	{ID: "push_up", Name: "Push Up", MuscleGroup: m.MuscleChest, Equipment: "bodyweight",
		SecondaryMuscles: []string{m.MuscleTriceps},
		Aliases:          []string{"Pushup", "Push-Ups"}},
	{ID: "dip", Name: "Dip", MuscleGroup: m.MuscleChest, Equipment: "bodyweight",
		SecondaryMuscles: []string{m.MuscleTriceps},
		Aliases:          []string{"Dips", "Chest Dip"}},

	// Back
	{ID: "deadlift", Name: "Deadlift", MuscleGroup: m.MuscleBack, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleHamstrings, m.MuscleGlutes},
		Aliases:          []string{"Barbell Deadlift", "Conventional Deadlift", "Deadlift Barbell"}},
	{ID: "barbell_row", Name: "Barbell Row", MuscleGroup: m.MuscleBack, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleBiceps},
		Aliases:          []string{"Bent Over Row", "Bent Over Row Barbell", "BB Row", "Pendlay Row"}},
	{ID: "dumbbell_row", Name: "Dumbbell Row", MuscleGroup: m.MuscleBack, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleBiceps},
		Aliases:          []string{"One Arm Dumbbell Row", "Bent Over One Arm Row Dumbbell", "DB Row"}},
	{ID: "pull_up", Name: "Pull Up", MuscleGroup: m.MuscleBack, Equipment: "bodyweight",
		SecondaryMuscles: []string{m.MuscleBiceps},
		Aliases:          []string{"Pullup", "Pull-Ups", "Wide Grip Pull Up"}},
	{ID: "chin_up", Name: "Chin Up", MuscleGroup: m.MuscleBack, Equipment: "bodyweight",
		SecondaryMuscles: []string{m.MuscleBiceps},
		Aliases:          []string{"Chinup", "Chin-Ups"}},
	{ID: "lat_pulldown", Name: "Lat Pulldown", MuscleGroup: m.MuscleBack, Equipment: "cable",
		SecondaryMuscles: []string{m.MuscleBiceps},
		Aliases:          []string{"Lat Pulldown Cable", "Pulldown", "Lat Pull Down"}},
	{ID: "seated_cable_row", Name: "Seated Cable Row", MuscleGroup: m.MuscleBack, Equipment: "cable",
		Aliases: []string{"Seated Row Cable", "Cable Row", "Seated Row"}},
	{ID: "t_bar_row", Name: "T-Bar Row", MuscleGroup: m.MuscleBack, Equipment: "barbell",
		Aliases: []string{"T Bar Row"}},

	// Shoulders
	{ID: "overhead_press", Name: "Overhead Press", MuscleGroup: m.MuscleShoulders, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleTriceps},
		Aliases:          []string{"OHP", "Military Press", "Strict Press", "Overhead Press Barbell", "Standing Barbell Press"}},
	{ID: "dumbbell_shoulder_press", Name: "Dumbbell Shoulder Press", MuscleGroup: m.MuscleShoulders, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleTriceps},
		Aliases:          []string{"Shoulder Press Dumbbell", "Seated Dumbbell Press", "DB Shoulder Press"}},
	{ID: "lateral_raise", Name: "Lateral Raise", MuscleGroup: m.MuscleShoulders, Equipment: "dumbbell",
		Aliases: []string{"Side Lateral Raise", "Lateral Raise Dumbbell", "Side Raise"}},
	{ID: "face_pull", Name: "Face Pull", MuscleGroup: m.MuscleShoulders, Equipment: "cable",
		SecondaryMuscles: []string{m.MuscleBack},
		Aliases:          []string{"Face Pull Cable", "Face Pulls"}},
	{ID: "rear_delt_fly", Name: "Rear Delt Fly", MuscleGroup: m.MuscleShoulders, Equipment: "dumbbell",
		Aliases: []string{"Reverse Fly", "Rear Delt Raise"}},

	// Arms
	{ID: "barbell_curl", Name: "Barbell Curl", MuscleGroup: m.MuscleBiceps, Equipment: "barbell",
		Aliases: []string{"Bicep Curl Barbell", "BB Curl", "Standing Barbell Curl"}},
	{ID: "dumbbell_curl", Name: "Dumbbell Curl", MuscleGroup: m.MuscleBiceps, Equipment: "dumbbell",
		Aliases: []string{"Bicep Curl", "Bicep Curl Dumbbell", "DB Curl"}},
	{ID: "hammer_curl", Name: "Hammer Curl", MuscleGroup: m.MuscleBiceps, Equipment: "dumbbell",
		Aliases: []string{"Hammer Curl Dumbbell", "Hammer Curls"}},
	{ID: "tricep_pushdown", Name: "Tricep Pushdown", MuscleGroup: m.MuscleTriceps, Equipment: "cable",
		Aliases: []string{"Triceps Pushdown", "Cable Pushdown", "Rope Pushdown", "Triceps Pushdown Cable"}},
	{ID: "skull_crusher", Name: "Skull Crusher", MuscleGroup: m.MuscleTriceps, Equipment: "barbell",
		Aliases: []string{"Lying Triceps Extension", "Skullcrusher", "Skull Crushers"}},
	{ID: "overhead_tricep_extension", Name: "Overhead Tricep Extension", MuscleGroup: m.MuscleTriceps, Equipment: "dumbbell",
		Aliases: []string{"Triceps Extension", "Overhead Triceps Extension"}},
	{ID: "close_grip_bench_press", Name: "Close Grip Bench Press", MuscleGroup: m.MuscleTriceps, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleChest},
		Aliases:          []string{"CGBP", "Close-Grip Bench"}},

	// Legs
	{ID: "squat", Name: "Squat", MuscleGroup: m.MuscleQuads, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleGlutes, m.MuscleHamstrings},
		Aliases:          []string{"Back Squat", "Barbell Squat", "Squat Barbell", "Barbell Back Squat"}},
	{ID: "front_squat", Name: "Front Squat", MuscleGroup: m.MuscleQuads, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleGlutes},
		Aliases:          []string{"Front Squat Barbell", "Barbell Front Squat"}},
	{ID: "goblet_squat", Name: "Goblet Squat", MuscleGroup: m.MuscleQuads, Equipment: "dumbbell",
		Aliases: []string{"Goblet Squat Kettlebell", "Goblet Squat Dumbbell"}},
	{ID: "leg_press", Name: "Leg Press", MuscleGroup: m.MuscleQuads, Equipment: "machine",
		SecondaryMuscles: []string{m.MuscleGlutes},
		Aliases:          []string{"Leg Press Machine", "45 Degree Leg Press", "Sled Leg Press"}},
	{ID: "leg_extension", Name: "Leg Extension", MuscleGroup: m.MuscleQuads, Equipment: "machine",
		Aliases: []string{"Leg Extension Machine", "Quad Extension"}},
	{ID: "bulgarian_split_squat", Name: "Bulgarian Split Squat", MuscleGroup: m.MuscleQuads, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleGlutes},
		Aliases:          []string{"Split Squat", "BSS", "Rear Foot Elevated Split Squat"}},
	{ID: "lunge", Name: "Lunge", MuscleGroup: m.MuscleQuads, Equipment: "dumbbell",
		SecondaryMuscles: []string{m.MuscleGlutes},
		Aliases:          []string{"Lunges", "Walking Lunge", "Dumbbell Lunge"}},
	{ID: "romanian_deadlift", Name: "Romanian Deadlift", MuscleGroup: m.MuscleHamstrings, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleGlutes, m.MuscleBack},
		Aliases:          []string{"RDL", "Romanian Deadlift Barbell", "Stiff Leg Deadlift"}},
	{ID: "leg_curl", Name: "Leg Curl", MuscleGroup: m.MuscleHamstrings, Equipment: "machine",
		Aliases: []string{"Lying Leg Curl", "Seated Leg Curl", "Hamstring Curl", "Leg Curl Machine"}},
	{ID: "hip_thrust", Name: "Hip Thrust", MuscleGroup: m.MuscleGlutes, Equipment: "barbell",
		SecondaryMuscles: []string{m.MuscleHamstrings},
		Aliases:          []string{"Barbell Hip Thrust", "Hip Thrust Barbell", "Glute Bridge"}},
	{ID: "calf_raise", Name: "Calf Raise", MuscleGroup: m.MuscleCalves, Equipment: "machine",
		Aliases: []string{"Standing Calf Raise", "Seated Calf Raise", "Calf Raise Machine"}},

	// Core
	{ID: "plank", Name: "Plank", MuscleGroup: m.MuscleCore, Equipment: "bodyweight"},
	{ID: "hanging_leg_raise", Name: "Hanging Leg Raise", MuscleGroup: m.MuscleCore, Equipment: "bodyweight",
		Aliases: []string{"Hanging Knee Raise", "Leg Raise"}},
	{ID: "cable_crunch", Name: "Cable Crunch", MuscleGroup: m.MuscleCore, Equipment: "cable",
		Aliases: []string{"Kneeling Cable Crunch", "Crunch Cable"}},
}

// movementPatterns is the curated substitution table. Each exercise appears
// in at most one pattern; substitutes are the other members in table order.
var movementPatterns = []struct {
	Pattern string
	IDs     []string
}{
	{"horizontal_push", []string{"bench_press", "dumbbell_bench_press", "push_up", "dip", "close_grip_bench_press"}},
	{"incline_push", []string{"incline_bench_press", "incline_dumbbell_press"}},
	{"chest_isolation", []string{"chest_fly", "cable_crossover"}},
	{"vertical_push", []string{"overhead_press", "dumbbell_shoulder_press"}},
	{"horizontal_pull", []string{"barbell_row", "dumbbell_row", "seated_cable_row", "t_bar_row"}},
	{"vertical_pull", []string{"pull_up", "chin_up", "lat_pulldown"}},
	{"hip_hinge", []string{"deadlift", "romanian_deadlift", "hip_thrust"}},
	{"squat", []string{"squat", "front_squat", "goblet_squat", "leg_press", "bulgarian_split_squat", "lunge"}},
	{"knee_extension", []string{"leg_extension"}},
	{"knee_flexion", []string{"leg_curl"}},
	{"elbow_flexion", []string{"barbell_curl", "dumbbell_curl", "hammer_curl"}},
	{"elbow_extension", []string{"tricep_pushdown", "skull_crusher", "overhead_tricep_extension"}},
	{"shoulder_isolation", []string{"lateral_raise", "rear_delt_fly", "face_pull"}},
	{"plantar_flexion", []string{"calf_raise"}},
	{"trunk", []string{"plank", "hanging_leg_raise", "cable_crunch"}},
}

// xpMultiplier scales set XP by primary muscle group.
var xpMultiplier = map[string]float64{
	m.MuscleQuads:      0.8,
	m.MuscleHamstrings: 0.9,
	m.MuscleGlutes:     0.9,
	m.MuscleBack:       0.9,
	m.MuscleChest:      1.0,
	m.MuscleShoulders:  1.2,
	m.MuscleBiceps:     1.5,
	m.MuscleTriceps:    1.5,
	m.MuscleCalves:     1.5,
	m.MuscleCore:       1.5,
	m.MuscleOther:      1.0,
}
