package opencl

// Device-side copy of the geodesic integrator in blackhole/sim. The two
// implementations must stay in sync; the sim package tests pin the behavior.
const raysKernelSource = `
// Euler integration of the Schwarzschild null geodesic equations. Rays are
// traced camera-outward; outside the horizon a reversed ray retraces its
// path exactly, so the direction of travel does not matter.

__constant float GM = 10.f;

float d2r(float r, float dt, float dr, float dtheta) {
  return - GM / (r * r * r) * (r - 2.f * GM) * dt * dt
    + GM / (r * (r - 2.f * GM)) * dr * dr
    + (r - 2.f * GM) * dtheta * dtheta;
}

float d2theta(float r, float dr, float dtheta) {
  return - 2.f / r * dtheta * dr;
}

// dt that keeps the path null for the given r, dr, dtheta. Recomputing it
// every step keeps the trajectory from drifting off the light cone.
float null_dt(float r, float dr, float dtheta) {
  float q = 1.f - 2.f * GM / r;
  return sqrt((dr * dr / (q * q)) + r * r * dtheta * dtheta / q);
}

__constant int NUM_ITER = 1000000;
__constant float TS = 0.01f;

// One work item per incidence-angle bucket. outcomes[i] = 1 when the ray is
// captured (angles[i] = azimuthal position angle at horizon crossing) and 0
// when it escapes (angles[i] = angle of the outgoing direction).
__kernel void gen_outcomes(
    __global float *angles,
    __global uchar *outcomes,
    float min_angle,
    float max_angle,
    int num,
    float start_r)
{
  // Small fudge factor: Euler stepping blows up at the horizon itself.
  float min_r = 2.f * GM + 0.0001f;

  int slot = get_global_id(0);
  if (slot >= num) {
    return;
  }

  float frac = (float)slot / (float)(num - 1);
  float dx = max_angle * frac + min_angle * (1.f - frac);
  float dz = 1.f;

  float r = start_r;
  float theta = M_PI_F; // launch point is on the negative z axis

  // Launch direction in Schwarzschild coordinates.
  float dr = -start_r * dz / r;
  float dtheta = -start_r * dx / (r * r);

  bool hit = false;
  for (int t = 0; t < NUM_ITER; t++) {
    float dt = null_dt(r, dr, dtheta);

    float ddr = d2r(r, dt, dr, dtheta);
    float ddtheta = d2theta(r, dr, dtheta);

    dr += TS * ddr;
    dtheta += TS * ddtheta;

    r += TS * dr;
    theta += TS * dtheta;

    if (r <= min_r) {
      hit = true;
      break;
    }
    if (r > 500.f) {
      break;
    }
  }

  if (hit) {
    outcomes[slot] = 1;
    angles[slot] = M_PI_F / 2.f - theta;
  } else {
    float odx = r * cos(theta) * dtheta + sin(theta) * dr;
    float odz = -r * sin(theta) * dtheta + cos(theta) * dr;
    outcomes[slot] = 0;
    angles[slot] = atan2(odz, odx);
  }
}
`

const renderKernelSource = `
// Per-frame compositor: one work item per pixel, aa*aa sub-samples each.

// Bilinear fetch with repeat addressing on a tightly packed RGBA buffer;
// mirrors texture.Texture.Sample on the host.
float4 sample_rgba(__global const uchar *pix, int w, int h, float u, float v) {
  float x = u * (float)w - 0.5f;
  float y = v * (float)h - 0.5f;

  int x0 = (int)floor(x);
  int y0 = (int)floor(y);
  float fx = x - (float)x0;
  float fy = y - (float)y0;
  int x1 = x0 + 1;
  int y1 = y0 + 1;

  x0 = ((x0 % w) + w) % w;
  x1 = ((x1 % w) + w) % w;
  y0 = ((y0 % h) + h) % h;
  y1 = ((y1 % h) + h) % h;

  int i00 = (y0 * w + x0) * 4;
  int i10 = (y0 * w + x1) * 4;
  int i01 = (y1 * w + x0) * 4;
  int i11 = (y1 * w + x1) * 4;

  float4 c00 = (float4)(pix[i00], pix[i00 + 1], pix[i00 + 2], pix[i00 + 3]);
  float4 c10 = (float4)(pix[i10], pix[i10 + 1], pix[i10 + 2], pix[i10 + 3]);
  float4 c01 = (float4)(pix[i01], pix[i01 + 1], pix[i01 + 2], pix[i01 + 3]);
  float4 c11 = (float4)(pix[i11], pix[i11 + 1], pix[i11 + 2], pix[i11 + 3]);

  return mix(mix(c00, c10, fx), mix(c01, c11, fx), fy);
}

typedef struct {
  float angle;
  uchar captured;
} lookup_t;

// Uniform bucket spacing makes the fractional position itself the index.
// Clamps both ends; when the straddled buckets disagree on capture the lower
// bucket wins outright instead of mixing incompatible angles.
lookup_t lookup(__global const float *angles, __global const uchar *captured,
                float pos, int num) {
  if (pos < 0.f) {
    pos = 0.f;
  }
  int i = (int)pos;
  if (i > num - 2) {
    i = num - 2;
  }
  float f = pos - (float)i;
  if (f > 1.f) {
    f = 1.f;
  }

  lookup_t res;
  res.captured = captured[i];
  if (captured[i] != captured[i + 1]) {
    res.angle = angles[i];
  } else {
    res.angle = (1.f - f) * angles[i] + f * angles[i + 1];
  }
  return res;
}

__kernel void render_frame(
    __global uchar *dest,
    __global const float *angles,
    __global const uchar *captured,
    int width,
    int height,
    int pitch, // row stride in pixels, >= width
    float cx,  // lens center
    float cy,
    __global const uchar *sky,
    int sky_w,
    int sky_h,
    __global const uchar *surface,
    int surf_w,
    int surf_h,
    int aa,
    int num,
    float min_angle,
    float max_angle,
    float fov_scale,
    float rot_scale)
{
  int gx = get_global_id(0);
  int gy = get_global_id(1);
  if (gx >= width || gy >= height) {
    return;
  }

  float half_w = (float)width / 2.f;
  float x_pan = cx / rot_scale;
  float y_pan = (cy - (float)height / 2.f) / rot_scale;

  float4 acc = (float4)(0.f);
  for (int ax = 0; ax < aa; ax++) {
    for (int ay = 0; ay < aa; ay++) {
      float sx = (float)gx + (float)ax / (float)aa;
      float sy = (float)gy + (float)ay / (float)aa;

      // Sub-sample position relative to the lens center; both axes are
      // normalized by the half width so pixels stay square.
      float px = (sx - cx) / half_w;
      float py = (sy - cy) / half_w;

      float screen_angle = length((float2)(px, py)) * fov_scale;
      float pos = (screen_angle - min_angle) / (max_angle - min_angle) * (float)num;
      lookup_t res = lookup(angles, captured, pos, num);

      float pixel_angle = atan2(py, px);

      // Start on the equator at the result angle, swing around the optical
      // axis by the pixel angle, then apply the pan rotations.
      float3 loc = (float3)(cos(res.angle), sin(res.angle), 0.f);
      loc = (float3)(cos(pixel_angle) * loc.x + sin(pixel_angle) * loc.z,
                     loc.y,
                     -sin(pixel_angle) * loc.x + cos(pixel_angle) * loc.z);
      loc = (float3)(loc.x,
                     cos(y_pan) * loc.y + sin(y_pan) * loc.z,
                     -sin(y_pan) * loc.y + cos(y_pan) * loc.z);
      loc = (float3)(cos(x_pan) * loc.x + sin(x_pan) * loc.y,
                     -sin(x_pan) * loc.x + cos(x_pan) * loc.y,
                     loc.z);

      float phi = acos(clamp(loc.z, -1.f, 1.f)) / M_PI_F;
      float theta = (atan2(loc.y, loc.x) + M_PI_F) / (2.f * M_PI_F);

      if (res.captured) {
        acc += sample_rgba(surface, surf_w, surf_h, theta, phi);
      } else {
        // Negated here and not above: we see the front of the event horizon
        // but the back of the sky sphere.
        acc += sample_rgba(sky, sky_w, sky_h, -theta, phi);
      }
    }
  }

  acc /= (float)(aa * aa);

  int i = (gy * pitch + gx) * 4;
  dest[i]     = (uchar)clamp(acc.x + 0.5f, 0.f, 255.f);
  dest[i + 1] = (uchar)clamp(acc.y + 0.5f, 0.f, 255.f);
  dest[i + 2] = (uchar)clamp(acc.z + 0.5f, 0.f, 255.f);
  dest[i + 3] = (uchar)clamp(acc.w + 0.5f, 0.f, 255.f);
}
`
